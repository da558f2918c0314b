package grid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/etfsave/internal/common"
)

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		name string
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string kept verbatim", in: " KR7360750004 ", want: " KR7360750004 "},
		{name: "integral float", in: 360750.0, want: "360750"},
		{name: "fractional float", in: 0.0123, want: "0.0123"},
		{name: "int", in: 7, want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CellText(tt.in))
		})
	}
}

func TestRow_Cell(t *testing.T) {
	row := Row{"a", nil, 1.5}
	assert.Equal(t, "a", row.Cell(0))
	assert.Nil(t, row.Cell(1))
	assert.Nil(t, row.Cell(5))
	assert.Nil(t, row.Cell(-1))
	assert.Equal(t, []string{"a", "", "1.5"}, row.Texts())
}

func TestReadDelimited(t *testing.T) {
	input := "\ufeff종목코드\t종목명\t표준코드\n360750\tTIGER 미국S&P500\tKR7360750004\n133690\t\n"

	g, err := ReadDelimited(strings.NewReader(input), '\t')
	require.NoError(t, err)
	require.Len(t, g, 3)

	assert.Equal(t, "종목코드", g[0].Text(0))
	assert.Equal(t, "KR7360750004", g[1].Text(2))
	assert.Len(t, g[2], 2)
	assert.Nil(t, g[2].Cell(1))
}

func TestReadHTML_Spans(t *testing.T) {
	page := `<html><body>
<table>
  <tr><th rowspan="2">펀드명</th><th rowspan="2">표준코드</th><th colspan="2">보수</th></tr>
  <tr><th>합계(A)</th><th>기타비용(B)</th></tr>
  <tr><td>미래에셋 TIGER</td><td>KR7360750004</td><td>0.0700</td><td>0.0123</td></tr>
</table>
</body></html>`

	g, err := ReadHTML(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, g, 3)

	assert.Equal(t, []string{"펀드명", "표준코드", "보수", ""}, g[0].Texts())
	assert.Equal(t, []string{"", "", "합계(A)", "기타비용(B)"}, g[1].Texts())
	assert.Equal(t, "0.0123", g[2].Text(3))
}

func TestReadHTML_NoTable(t *testing.T) {
	g, err := ReadHTML(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, g)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"펀드별 보수비용비교"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"펀드명", "표준코드", "합계(A)"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"TIGER", "KR7360750004", "0.07"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := ReadXLSX(buf)
	require.NoError(t, err)
	require.Len(t, g, 3)
	assert.Equal(t, "합계(A)", g[1].Text(2))
	assert.Equal(t, "0.07", g[2].Text(2))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		data    []byte
		want    Format
		wantErr bool
	}{
		{name: "ole2 signature", path: "fees.xls", data: append([]byte{}, ole2Magic...), want: FormatXLS},
		{name: "zip signature", path: "fees.bin", data: []byte("PK\x03\x04rest"), want: FormatXLSX},
		{name: "html disguised as xls", path: "fees.xls", data: []byte("\n  <table></table>"), want: FormatHTML},
		{name: "csv by extension", path: "fees.csv", data: []byte("a,b"), want: FormatCSV},
		{name: "txt is tab separated", path: "list.txt", data: []byte("a\tb"), want: FormatTSV},
		{name: "unknown", path: "fees.pdf", data: []byte("%PDF"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.path, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is a missing source", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.xls"))
		assert.ErrorIs(t, err, common.ErrMissingSource)
	})

	t.Run("csv and html produce the same grid", func(t *testing.T) {
		csvPath := filepath.Join(dir, "fees.csv")
		require.NoError(t, os.WriteFile(csvPath, []byte("표준코드,합계(A)\nKR7360750004,0.07\n"), 0o600))

		htmlPath := filepath.Join(dir, "fees.xls")
		require.NoError(t, os.WriteFile(htmlPath, []byte(
			"<table><tr><td>표준코드</td><td>합계(A)</td></tr><tr><td>KR7360750004</td><td>0.07</td></tr></table>"), 0o600))

		fromCSV, err := Load(csvPath)
		require.NoError(t, err)
		fromHTML, err := Load(htmlPath)
		require.NoError(t, err)

		assert.Equal(t, fromCSV, fromHTML)
	})
}
