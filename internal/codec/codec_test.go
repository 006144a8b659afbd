package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet(map[string][]string{
		"country":   {"UK", "US"},
		"car_model": {"Camry", "Civic", "Corolla"},
		"car_brand": {"Honda", "Toyota"},
	})
	require.NoError(t, err)
	return s
}

func TestCodec_RoundTrip(t *testing.T) {
	s := testSet(t)

	for _, field := range s.Fields() {
		classes, err := s.Classes(field)
		require.NoError(t, err)

		for _, v := range classes {
			code, err := s.Encode(field, v)
			require.NoError(t, err)

			decoded, err := s.Decode(field, code)
			require.NoError(t, err)
			assert.Equal(t, v, decoded, "field %s", field)
		}
	}
}

func TestCodec_CodesFollowClassOrder(t *testing.T) {
	c, err := New("car_model", []string{"Camry", "Civic", "Corolla"})
	require.NoError(t, err)

	code, err := c.Encode("Corolla")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, 3, c.Size())
}

func TestCodec_Encode_UnknownCategory(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{name: "unseen country", field: "country", value: "DE"},
		{name: "case differs", field: "country", value: "us"},
		{name: "empty string", field: "car_model", value: ""},
	}

	s := testSet(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Encode(tt.field, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownCategory)
			assert.NotErrorIs(t, err, ErrInvalidCode)

			var catErr *CategoryError
			require.True(t, errors.As(err, &catErr))
			assert.Equal(t, tt.field, catErr.Field)
			assert.Equal(t, tt.value, catErr.Value)
		})
	}
}

func TestCodec_Decode_InvalidCode(t *testing.T) {
	s := testSet(t)

	for _, code := range []int{-1, 2, 100} {
		_, err := s.Decode("car_brand", code)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCode)
		assert.NotErrorIs(t, err, ErrUnknownCategory)
	}
}

func TestSet_UnknownField(t *testing.T) {
	s := testSet(t)

	_, err := s.Encode("car_color", "Red")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.Decode("car_color", 0)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestNew_RejectsNonBijection(t *testing.T) {
	_, err := New("car_color", []string{"Red", "Blue", "Red"})
	assert.ErrorIs(t, err, ErrDuplicateClass)

	_, err = New("car_color", nil)
	assert.ErrorIs(t, err, ErrEmptyDomain)
}

func TestCodec_DomainIsImmutable(t *testing.T) {
	classes := []string{"Blue", "Red"}
	c, err := New("car_color", classes)
	require.NoError(t, err)

	classes[0] = "Green"
	got := c.Classes()
	got[1] = "Black"

	decoded, err := c.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, "Blue", decoded)
	assert.True(t, c.Contains("Red"))
	assert.False(t, c.Contains("Green"))
}
