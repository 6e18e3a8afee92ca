package tsquery

import "strings"

// The ServerQuery protocol escapes whitespace and separator characters in
// parameter values; see the TeamSpeak 3 server query manual.

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`/`, `\/`,
	` `, `\s`,
	`|`, `\p`,
	"\a", `\a`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\v", `\v`,
)

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\/`, `/`,
	`\s`, ` `,
	`\p`, `|`,
	`\a`, "\a",
	`\b`, "\b",
	`\f`, "\f",
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\v`, "\v",
)

// Escape encodes a raw value for use in a query command.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape decodes a value received from the server.
func Unescape(s string) string {
	return unescaper.Replace(s)
}
