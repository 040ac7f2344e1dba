package csvutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// parse はCSVバイト列をヘッダ行とデータ行に分解します
func parse(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV is empty")
	}
	return records[0], records[1:], nil
}

// columnIndex はヘッダ行から対象列の位置を探します
func columnIndex(header []string, column string) (int, error) {
	for i, name := range header {
		if name == column {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in CSV header", column)
}

// ExtractColumn は対象列の値をデータ行ごとに取り出します。
// 行に対象列が存在しない場合は空文字列として扱う。
func ExtractColumn(data []byte, column string) ([]string, error) {
	header, rows, err := parse(data)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if idx >= len(row) {
			values = append(values, "")
			continue
		}
		values = append(values, row[idx])
	}
	return values, nil
}

// ApplyColumn はデータ行番号（0始まり）→新しい値のマップで対象列を差し替えます。
// マップにない行は元の値を保持する。
func ApplyColumn(data []byte, column string, replacements map[int]string) ([]byte, error) {
	header, rows, err := parse(data)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		value, ok := replacements[i]
		if !ok || idx >= len(row) {
			continue
		}
		row[idx] = value
	}

	return write(header, rows)
}

// RewriteColumn は対象列の空でないセルすべてに変換関数を適用します。
// 戻り値は書き換え後のCSVと処理したセル数。
func RewriteColumn(data []byte, column string, fn func(string) string) ([]byte, int, error) {
	header, rows, err := parse(data)
	if err != nil {
		return nil, 0, err
	}
	idx, err := columnIndex(header, column)
	if err != nil {
		return nil, 0, err
	}

	processed := 0
	for _, row := range rows {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		row[idx] = fn(row[idx])
		processed++
	}

	out, err := write(header, rows)
	if err != nil {
		return nil, 0, err
	}
	return out, processed, nil
}

func write(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
