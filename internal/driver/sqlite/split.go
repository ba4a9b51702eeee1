package sqlite

import "strings"

// splitStatements splits a batch of SQL text on semicolons, respecting
// single- and double-quoted strings and line comments. Empty statements
// are dropped.
func splitStatements(sqlText string) []string {
	var stmts []string
	var buf strings.Builder

	flush := func() {
		s := strings.TrimSpace(buf.String())
		if s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
	}

	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]
		switch ch {
		case '\'', '"':
			// Copy the quoted run verbatim, honoring doubled quotes as escapes.
			quote := ch
			buf.WriteByte(ch)
			for i++; i < len(sqlText); i++ {
				buf.WriteByte(sqlText[i])
				if sqlText[i] == quote {
					if i+1 < len(sqlText) && sqlText[i+1] == quote {
						i++
						buf.WriteByte(quote)
						continue
					}
					break
				}
			}
		case '-':
			if i+1 < len(sqlText) && sqlText[i+1] == '-' {
				// Line comment: skip to end of line.
				for i < len(sqlText) && sqlText[i] != '\n' {
					i++
				}
				buf.WriteByte('\n')
				continue
			}
			buf.WriteByte(ch)
		case ';':
			flush()
		default:
			buf.WriteByte(ch)
		}
	}
	flush()

	return stmts
}
