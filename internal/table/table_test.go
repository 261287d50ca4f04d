package table

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, name, body string) *Table {
	t.Helper()
	tbl, err := Read(strings.NewReader(body), name)
	require.NoError(t, err)
	return tbl
}

func TestParse(t *testing.T) {
	tests := []struct {
		field   string
		want    string
		missing bool
	}{
		{"  A ", "A", false},
		{"", "", true},
		{"   ", "", true},
		{"NA", "", true},
		{"nan", "", true},
		{"NULL", "", true},
		{"0", "0", false},
		{"--", "--", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			v := Parse(tt.field)
			assert.Equal(t, tt.missing, v.Missing)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValueFloat(t *testing.T) {
	f, ok := Text("10").Float()
	assert.True(t, ok)
	assert.Equal(t, 10.0, f)

	_, ok = Text("M").Float()
	assert.False(t, ok)

	_, ok = Missing().Float()
	assert.False(t, ok)

	assert.True(t, Number(math.Inf(1)).Missing)
	assert.True(t, Number(math.NaN()).Missing)
	assert.Equal(t, "40", Number(40).Raw)
	assert.Equal(t, "2.5", Number(2.5).Raw)
}

func TestNormalizeKey(t *testing.T) {
	a, ok := NormalizeKey(Text("7"))
	require.True(t, ok)
	b, _ := NormalizeKey(Text("7.0"))
	assert.Equal(t, a, b)

	c, _ := NormalizeKey(Text("C1"))
	assert.Equal(t, "C1", c)

	_, ok = NormalizeKey(Missing())
	assert.False(t, ok)
}

func TestTable_Columns(t *testing.T) {
	tbl, err := New("victims", "CASEID", "VAGE")
	require.NoError(t, err)
	require.NoError(t, tbl.AddRow([]Value{Text("1"), Text("10")}))
	require.NoError(t, tbl.AddRow([]Value{Text("2"), Missing()}))

	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasColumn("VAGE"))
	assert.False(t, tbl.HasColumn("VSEX"))

	err = tbl.AddRow([]Value{Text("3")})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	err = tbl.AddColumn("VAGE", []Value{Text("1"), Text("2")})
	assert.ErrorIs(t, err, ErrColumnConflict)

	err = tbl.SetColumn("AvgVAGE", []Value{Text("1")})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	require.NoError(t, tbl.SetColumn("AvgVAGE", []Value{Text("10"), Missing()}))
	assert.Equal(t, []string{"CASEID", "VAGE", "AvgVAGE"}, tbl.Columns())

	v, err := tbl.Get(1, "AvgVAGE")
	require.NoError(t, err)
	assert.True(t, v.Missing)

	_, err = tbl.Get(5, "AvgVAGE")
	assert.Error(t, err)
}

func TestTable_Require(t *testing.T) {
	tbl, err := New("parties", "CASEID", "MOVEMENT")
	require.NoError(t, err)

	assert.NoError(t, tbl.Require("CASEID", "MOVEMENT"))

	err = tbl.Require("CASEID", "PRACE")
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "parties", mc.Table)
	assert.Equal(t, "PRACE", mc.Column)
	assert.Contains(t, err.Error(), `"PRACE"`)
}

func TestTable_Clone(t *testing.T) {
	tbl := mustRead(t, "t", "A,B\n1,2\n")
	c := tbl.Clone()
	require.NoError(t, c.SetColumn("A", []Value{Text("9")}))

	orig, _ := tbl.Get(0, "A")
	assert.Equal(t, "1", orig.Raw)
	assert.False(t, tbl.HasColumn("C"))
}

func TestNew_DuplicateColumn(t *testing.T) {
	_, err := New("t", "A", "A")
	assert.ErrorIs(t, err, ErrColumnConflict)
}

func TestNormalizeKey_LargeIntegers(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1234567890123456789", "1234567890123456789"},
		{"1234567890123456790", "1234567890123456790"},
		{"0042", "42"},
		{"+42", "42"},
		{"-0", "0"},
		{"98765432109876543210987", "98765432109876543210987"},
		{"42.0", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeKey(Text(tt.raw))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupBy_LargeIntegerKeys(t *testing.T) {
	tbl := mustRead(t, "victims", "CASEID,VAGE\n1234567890123456790,70\n1234567890123456789,10\n9007199254740993,5\n")

	out, err := tbl.GroupBy("CASEID", []Agg{{Column: "VAGE", Func: "mean"}})
	require.NoError(t, err)
	require.Equal(t, 3, out.Len(), "keys beyond 2^53 stay distinct")

	keys, _ := out.Column("CASEID")
	assert.Equal(t, []Value{Text("9007199254740993"), Text("1234567890123456789"), Text("1234567890123456790")}, keys)

	mean, _ := out.Column("VAGE")
	assert.Equal(t, []string{"5", "10", "70"}, []string{mean[0].Raw, mean[1].Raw, mean[2].Raw})
}

func TestJoin_LargeIntegerKeys(t *testing.T) {
	collisions := mustRead(t, "collisions", "CASEID\n1234567890123456789\n1234567890123456790\n")
	victims := mustRead(t, "victims", "CASEID,AvgVAGE\n1234567890123456790,70\n01234567890123456789,10\n")

	out, err := Join(collisions, victims, "CASEID", InnerJoin)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []Value{Text("1234567890123456789"), Text("10")}, out.Row(0))
	assert.Equal(t, []Value{Text("1234567890123456790"), Text("70")}, out.Row(1))
}

func TestGroupBy(t *testing.T) {
	tbl := mustRead(t, "victims", "CASEID,VAGE,FLAG\n2,30,1\n1,10,\n1,70,1\n10,,\n,5,1\n")

	out, err := tbl.GroupBy("CASEID", []Agg{
		{Column: "VAGE", Func: "mean"},
		{Column: "FLAG", Func: "sum"},
		{Column: "VAGE", Func: "count"},
	})
	require.Error(t, err, "duplicate output column")
	assert.ErrorIs(t, err, ErrColumnConflict)

	out, err = tbl.GroupBy("CASEID", []Agg{
		{Column: "VAGE", Func: "mean"},
		{Column: "FLAG", Func: "sum"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CASEID", "VAGE", "FLAG"}, out.Columns())
	require.Equal(t, 3, out.Len())

	keys, _ := out.Column("CASEID")
	assert.Equal(t, []Value{Text("1"), Text("2"), Text("10")}, keys)

	mean, _ := out.Column("VAGE")
	assert.Equal(t, "40", mean[0].Raw)
	assert.Equal(t, "30", mean[1].Raw)
	assert.True(t, mean[2].Missing, "mean of no values is missing")

	sum, _ := out.Column("FLAG")
	assert.Equal(t, "1", sum[0].Raw)
	assert.Equal(t, "1", sum[1].Raw)
	assert.Equal(t, "0", sum[2].Raw, "sum of no values is zero")
}

func TestGroupBy_Errors(t *testing.T) {
	tbl := mustRead(t, "victims", "CASEID,VSEX\n1,M\n")

	_, err := tbl.GroupBy("CASEID", []Agg{{Column: "VSEX", Func: "sum"}})
	var iv *InvalidValueError
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, "VSEX", iv.Column)
	assert.Equal(t, 0, iv.Row)

	_, err = tbl.GroupBy("CASEID", []Agg{{Column: "VSEX", Func: "mode"}})
	assert.Error(t, err)

	_, err = tbl.GroupBy("NOPE", nil)
	var mc *MissingColumnError
	assert.True(t, errors.As(err, &mc))

	out, err := tbl.GroupBy("CASEID", []Agg{{Column: "VSEX", Func: "count"}})
	require.NoError(t, err)
	n, _ := out.Get(0, "VSEX")
	assert.Equal(t, "1", n.Raw)
}

func TestJoin(t *testing.T) {
	collisions := mustRead(t, "collisions", "CASEID,BICCOL\n3,Y\n1,N\n2,N\n")
	victims := mustRead(t, "victims", "CASEID,AvgVAGE\n1.0,40\n3,20\n")

	t.Run("inner drops unmatched rows", func(t *testing.T) {
		out, err := Join(collisions, victims, "CASEID", InnerJoin)
		require.NoError(t, err)
		assert.Equal(t, []string{"CASEID", "BICCOL", "AvgVAGE"}, out.Columns())
		require.Equal(t, 2, out.Len())
		assert.Equal(t, []Value{Text("3"), Text("Y"), Text("20")}, out.Row(0))
		assert.Equal(t, []Value{Text("1"), Text("N"), Text("40")}, out.Row(1))
	})

	t.Run("left keeps unmatched rows with missing cells", func(t *testing.T) {
		out, err := Join(collisions, victims, "CASEID", LeftJoin)
		require.NoError(t, err)
		require.Equal(t, 3, out.Len())
		assert.Equal(t, []Value{Text("2"), Text("N"), Missing()}, out.Row(2))
	})

	t.Run("conflicting column", func(t *testing.T) {
		_, err := Join(collisions, collisions, "CASEID", InnerJoin)
		assert.ErrorIs(t, err, ErrColumnConflict)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := Join(collisions, victims, "CASEID", JoinPolicy("outer"))
		assert.ErrorIs(t, err, ErrUnknownJoinPolicy)
	})

	t.Run("repeats left rows per match", func(t *testing.T) {
		many := mustRead(t, "parties", "CASEID,MOVEMENT\n1,A\n1,B\n")
		out, err := Join(collisions, many, "CASEID", InnerJoin)
		require.NoError(t, err)
		assert.Equal(t, 2, out.Len())
	})
}

func TestParseJoinPolicy(t *testing.T) {
	p, err := ParseJoinPolicy("")
	require.NoError(t, err)
	assert.Equal(t, InnerJoin, p)

	p, err = ParseJoinPolicy(" LEFT ")
	require.NoError(t, err)
	assert.Equal(t, LeftJoin, p)

	_, err = ParseJoinPolicy("outer")
	assert.ErrorIs(t, err, ErrUnknownJoinPolicy)
}

func TestCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "related.csv")

	tbl := mustRead(t, "collisions", "\ufeffCASEID, POINT_X ,NOTE\n1,-122.4,\"a, b\"\n2,,NA\n")
	assert.Equal(t, []string{"CASEID", "POINT_X", "NOTE"}, tbl.Columns())

	require.NoError(t, WriteCSV(path, tbl))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CASEID,POINT_X,NOTE\n1,-122.4,\"a, b\"\n2,,\n", string(data))

	again, err := ReadCSV(path, "collisions")
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), again.Len())
	assert.Equal(t, tbl.Row(0), again.Row(0))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"), "victims")
	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "open", fe.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,B\n1,2,3\n"), 0o644))
	_, err = ReadCSV(path, "victims")
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.Equal(t, path, fe.Path)

	_, err = Read(strings.NewReader(""), "empty")
	assert.Error(t, err)
}

func TestStageCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "related.csv")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	tbl := mustRead(t, "collisions", "CASEID\n1\n")

	t.Run("discard leaves the target untouched", func(t *testing.T) {
		staged, err := StageCSV(path, tbl)
		require.NoError(t, err)
		assert.Equal(t, path, staged.Path())
		staged.Discard()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("commit replaces the target", func(t *testing.T) {
		staged, err := StageCSV(path, tbl)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data), "target unchanged before commit")

		require.NoError(t, staged.Commit())
		data, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "CASEID\n1\n", string(data))
	})
}
