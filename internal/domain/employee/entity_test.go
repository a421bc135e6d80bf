package employee

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployee_UnmarshalJSON_IDKeys(t *testing.T) {
	var e Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7","name":"A"}`), &e))
	assert.Equal(t, "7", e.ID)

	var legacy Employee
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"65f1c0","name":"B","salary":1200.5,"isActive":true}`), &legacy))
	assert.Equal(t, "65f1c0", legacy.ID)
	assert.Equal(t, "B", legacy.Name)
	assert.Equal(t, 1200.5, legacy.Salary)
	assert.True(t, legacy.IsActive)

	var both Employee
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","_id":"2"}`), &both))
	assert.Equal(t, "1", both.ID)
}

func TestDate_JSON(t *testing.T) {
	t.Run("date only", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2023-04-05"`), &d))
		assert.Equal(t, NewDate(2023, time.April, 5), d)
		assert.Equal(t, "2023-04-05", d.String())
	})

	t.Run("rfc3339 is truncated to the day", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2023-04-05T17:30:00Z"`), &d))
		assert.Equal(t, NewDate(2023, time.April, 5), d)
	})

	t.Run("null and empty", func(t *testing.T) {
		d := NewDate(2020, time.January, 1)
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
		require.NoError(t, json.Unmarshal([]byte(`""`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("invalid", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"05/04/2023"`), &d))
	})

	t.Run("marshal", func(t *testing.T) {
		out, err := json.Marshal(Employee{ID: "1", HireDate: NewDate(2021, time.March, 9)})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"hireDate":"2021-03-09"`)

		out, err = json.Marshal(Employee{ID: "1"})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"hireDate":null`)
	})
}

func TestState_CloneIsDeep(t *testing.T) {
	st := InitialState()
	st.List.Items = []Employee{{ID: "1", Name: "A"}}
	st.Current.Record = &Employee{ID: "1", Name: "A"}

	cp := st.Clone()
	cp.List.Items[0].Name = "changed"
	cp.Current.Record.Name = "changed"

	assert.Equal(t, "A", st.List.Items[0].Name)
	assert.Equal(t, "A", st.Current.Record.Name)
}
