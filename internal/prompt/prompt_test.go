package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestString_RetriesUntilValid(t *testing.T) {
	p, out := newTest("\n  \na|b\n  Coffee  \n")
	s, err := p.String("Description: ", false)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", s)
	assert.Equal(t, 2, strings.Count(out.String(), "cannot be empty"))
	assert.Contains(t, out.String(), "cannot contain '|'")
}

func TestString_AllowEmpty(t *testing.T) {
	p, _ := newTest("\n")
	s, err := p.String("Notes: ", true)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestAmount(t *testing.T) {
	p, out := newTest("abc\n0\n-5\n1.234\n12.5\n")
	d, err := p.Amount("Amount: ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", d.StringFixed(2))
	assert.Equal(t, 4, strings.Count(out.String(), "Error:"))
}

func TestOptionalAmount(t *testing.T) {
	p, _ := newTest("\n7\n")
	d, err := p.OptionalAmount("Min: ")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = p.OptionalAmount("Min: ")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "7", d.String())
}

func TestDate(t *testing.T) {
	p, out := newTest("2023-02-29\n2024-02-29\n\n")
	d, err := p.Date("Date", "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d)
	assert.Contains(t, out.String(), "Error:")

	d, err = p.Date("Date", "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d, "empty answer means today")
}

func TestOptionalDate(t *testing.T) {
	p, _ := newTest("nope\n\n")
	d, err := p.OptionalDate("Start date")
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestInt(t *testing.T) {
	p, out := newTest("x\n0\n9\n3\n")
	n, err := p.Int("Choice: ", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Contains(t, out.String(), "between 1 and 5")
}

func TestBool(t *testing.T) {
	p, _ := newTest("maybe\nYES\nn\n")
	b, err := p.Bool("Sure?")
	require.NoError(t, err)
	assert.True(t, b)
	b, err = p.Bool("Sure?")
	require.NoError(t, err)
	assert.False(t, b)
}

func TestPhrase(t *testing.T) {
	p, _ := newTest("delete all\nDELETE ALL\n")
	ok, err := p.Phrase("Type DELETE ALL: ", "DELETE ALL")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = p.Phrase("Type DELETE ALL: ", "DELETE ALL")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClosedInput(t *testing.T) {
	p, _ := newTest("")
	_, err := p.String("Description: ", false)
	assert.ErrorIs(t, err, ErrClosed)

	p, _ = newTest("abc")
	_, err = p.Amount("Amount: ")
	assert.ErrorIs(t, err, ErrClosed, "retries stop when input runs out")
}

func TestLastLineWithoutNewline(t *testing.T) {
	p, _ := newTest("Coffee")
	s, err := p.String("Description: ", false)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", s)
}
