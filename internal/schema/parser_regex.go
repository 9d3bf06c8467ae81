package schema

import (
	"regexp"
)

// Identifier and qualified-name fragments shared by the statement patterns.
// A qualified name may carry a database and schema prefix.
const (
	identPattern = `(?:"(?:[^"]|"")+"|[A-Za-z_][A-Za-z0-9_$]*)`
	qnamePattern = identPattern + `(?:\s*\.\s*` + identPattern + `){0,2}`
	tablePrefix  = `^\s*CREATE\s+(?:(?:GLOBAL|LOCAL)\s+)?(?:(?:TEMP|TEMPORARY|UNLOGGED)\s+)?TABLE`
	refAction    = `(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`
)

var (
	// Statement detection
	createTableStmtRegex       = regexp.MustCompile(`(?is)` + tablePrefix + `\b`)
	alterTableStmtRegex        = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\b`)
	createUniqueIndexStmtRegex = regexp.MustCompile(`(?is)^\s*CREATE\s+UNIQUE\s+INDEX\b`)

	// Statement shapes
	createTableRegex = regexp.MustCompile(`(?is)` + tablePrefix +
		`\s+(?:IF\s+NOT\s+EXISTS\s+)?(?P<table>` + qnamePattern + `)\s*(?P<rest>.*)$`)
	alterTableRegex = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?(?:ONLY\s+)?(?P<table>` +
		qnamePattern + `)\s+(?P<actions>.*)$`)
	createUniqueIndexRegex = regexp.MustCompile(`(?is)^\s*CREATE\s+UNIQUE\s+INDEX\s+(?:CONCURRENTLY\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` +
		`(?:(?P<name>` + identPattern + `)\s+)?ON\s+(?:ONLY\s+)?(?P<table>` + qnamePattern + `)\s*(?:USING\s+\w+\s*)?(?P<rest>\(.*)$`)

	// Constraint clauses
	addConstraintRegex   = regexp.MustCompile(`(?is)^ADD\s+(?:CONSTRAINT\s+(?P<name>` + identPattern + `)\s+)?(?P<body>.+)$`)
	tableConstraintRegex = regexp.MustCompile(`(?is)^(?:CONSTRAINT\s+(?P<name>` + identPattern + `)\s+)?(?P<body>(?:PRIMARY\s+KEY|FOREIGN\s+KEY|UNIQUE|CHECK|EXCLUDE)\b.*)$`)
	primaryKeyRegex      = regexp.MustCompile(`(?is)^PRIMARY\s+KEY\s*\((?P<cols>[^)]*)\)`)
	uniqueRegex          = regexp.MustCompile(`(?is)^UNIQUE\s*(?:NULLS\s+(?:NOT\s+)?DISTINCT\s*)?\((?P<cols>[^)]*)\)`)
	foreignKeyRegex      = regexp.MustCompile(`(?is)^FOREIGN\s+KEY\s*\((?P<cols>[^)]*)\)\s*REFERENCES\s+(?:ONLY\s+)?(?P<ref>` +
		qnamePattern + `)\s*(?:\((?P<refcols>[^)]*)\))?(?P<tail>.*)$`)
	referencesRegex = regexp.MustCompile(`(?is)^REFERENCES\s+(?:ONLY\s+)?(?P<ref>` + qnamePattern +
		`)\s*(?:\((?P<refcols>[^)]*)\))?(?P<tail>.*)$`)
	usingIndexRegex     = regexp.MustCompile(`(?is)^(?:PRIMARY\s+KEY|UNIQUE)\s+USING\s+INDEX\b`)
	constraintKindRegex = regexp.MustCompile(`(?is)^(PRIMARY\s+KEY|FOREIGN\s+KEY|UNIQUE)\b`)
	onDeleteRegex       = regexp.MustCompile(`(?is)\bON\s+DELETE\s+` + refAction)
	onUpdateRegex       = regexp.MustCompile(`(?is)\bON\s+UPDATE\s+` + refAction)
	likeClauseRegex     = regexp.MustCompile(`(?is)^LIKE\s`)
	identRegex          = regexp.MustCompile(`^` + identPattern + `$`)
	whereClauseRegex    = regexp.MustCompile(`(?is)\bWHERE\b`)

	// Cleaning
	whitespaceRegex = regexp.MustCompile(`\s+`)
	openParenRegex  = regexp.MustCompile(`\s*\(\s*`)
	commaRegex      = regexp.MustCompile(`\s*,\s*`)
	closeParenRegex = regexp.MustCompile(`\s*\)`)
)

func group(re *regexp.Regexp, match []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(match) {
		return ""
	}
	return match[i]
}
