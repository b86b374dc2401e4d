package dbapi_test

import (
	"encoding/json"
	"testing"

	"github.com/dracory/slidebase/internal/dbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOf(t *testing.T) {
	r := dbapi.RecordOf("id", 1, "url", "https://x.example", "link_text", "X")
	assert.Equal(t, []string{"id", "url", "link_text"}, r.Keys())
	assert.Equal(t, 3, r.Len())

	r.Set("id", 2)
	assert.Equal(t, []string{"id", "url", "link_text"}, r.Keys(), "overwriting keeps position")
	v, _ := r.Get("id")
	assert.Equal(t, 2, v)
}

func TestRecordZeroValue(t *testing.T) {
	var r dbapi.Record
	assert.Nil(t, r.Keys())
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get("x")
	assert.False(t, ok)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(out))
}

func TestRecordMarshalKeepsOrder(t *testing.T) {
	r := dbapi.RecordOf("b", 1, "a", "two")
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"two"}`, string(out))
}
