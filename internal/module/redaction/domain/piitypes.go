package domain

import "strings"

// ParsePIITypes は設定オブジェクトのPIIタイプ一覧をパースします。
// 1行1タイプ。行頭の箇条書き記号(* )や余分な空白は取り除き、空行は捨てる。
func ParsePIITypes(data []byte) []string {
	lines := strings.Split(string(data), "\n")

	types := make([]string, 0, len(lines))
	for _, line := range lines {
		name := strings.Trim(line, "* \t\r")
		if name == "" {
			continue
		}
		types = append(types, name)
	}
	return types
}
