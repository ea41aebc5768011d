package strings

import (
	"testing"
)

func TestBytesToString(t *testing.T) {
	b := []byte("hello world")
	s := BytesToString(b)

	if s != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", s)
	}

	// Test empty slice
	empty := BytesToString([]byte{})
	if empty != "" {
		t.Errorf("expected empty string, got '%s'", empty)
	}
}

func TestBuilder(t *testing.T) {
	builder := NewBuilder(32)

	builder.WriteString("hello")
	builder.WriteByte(' ')
	builder.WriteString("world")

	result := builder.String()
	if result != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", result)
	}

	if builder.Len() != 11 {
		t.Errorf("expected length 11, got %d", builder.Len())
	}
}

func TestBuilderStringSurvivesReset(t *testing.T) {
	builder := NewBuilder(8)
	builder.WriteString("key|1")
	owned := builder.String()

	builder.Reset()
	builder.WriteString("other")

	if owned != "key|1" {
		t.Errorf("expected owned copy 'key|1', got '%s'", owned)
	}
	if builder.String() != "other" {
		t.Errorf("expected 'other', got '%s'", builder.String())
	}
}

func TestPooledBuilderIsReset(t *testing.T) {
	builder := getBuilder()
	builder.WriteString("test")
	putBuilder(builder)

	again := getBuilder()
	defer putBuilder(again)
	if again.Len() != 0 {
		t.Errorf("expected reset builder, got length %d", again.Len())
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "|", "b"}, "a|b"},
		{[]string{"", "x", ""}, "x"},
	}

	for _, test := range tests {
		result := Concat(test.parts...)
		if result != test.expected {
			t.Errorf("Concat(%q) = %q, expected %q", test.parts, result, test.expected)
		}
	}
}
