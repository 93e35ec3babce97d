package database_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daap14/teamhub/internal/database"
)

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   database.Page
		want database.Page
	}{
		{"zero value", database.Page{}, database.Page{Number: 1, Limit: 30}},
		{"negative number", database.Page{Number: -3, Limit: 10}, database.Page{Number: 1, Limit: 10}},
		{"limit clamped", database.Page{Number: 2, Limit: 1000}, database.Page{Number: 2, Limit: 100}},
		{"number clamped", database.Page{Number: math.MaxInt, Limit: 100}, database.Page{Number: database.MaxPageNumber, Limit: 100}},
		{"kept as is", database.Page{Number: 4, Limit: 25}, database.Page{Number: 4, Limit: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, database.Page{}.Offset())
	assert.Equal(t, 60, database.Page{Number: 3}.Offset())
	assert.Equal(t, 10, database.Page{Number: 2, Limit: 10}.Offset())
	assert.Equal(t, (database.MaxPageNumber-1)*database.MaxPageSize, database.Page{Number: math.MaxInt, Limit: 1000}.Offset())
}

func TestNewResult_NilItemsBecomeEmpty(t *testing.T) {
	res := database.NewResult[string](nil, 0, database.Page{})

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 30, res.Limit)
}
