package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/fetchup/testutil"
)

func TestEnvelope_Outcome(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope[int]
		outcome string
		ok      bool
	}{
		{"fulfilled with status", fulfilled(200, 1), "200", true},
		{"fulfilled with error status", fulfilled(503, 0), "503", true},
		{"fulfilled without status", fulfilled(0, 1), OutcomeFulfilled, true},
		{"rejected", rejected[int]("boom"), OutcomeRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.outcome, tt.env.Outcome())
			assert.Equal(t, tt.ok, tt.env.OK())
		})
	}
}

func TestEnvelope_MarshalJSON(t *testing.T) {
	t.Run("fulfilled", func(t *testing.T) {
		testutil.AssertJSONEqual(t, `{"status":200,"data":{"a":1}}`, fulfilled(200, map[string]int{"a": 1}))
	})

	t.Run("fulfilled null payload", func(t *testing.T) {
		testutil.AssertJSONEqual(t, `{"status":204,"data":null}`, fulfilled[any](204, nil))
	})

	t.Run("fulfilled without status", func(t *testing.T) {
		testutil.AssertJSONEqual(t, `{"status":"fulfilled","data":[1,2]}`, fulfilled(0, []int{1, 2}))
	})

	t.Run("rejected", func(t *testing.T) {
		testutil.AssertJSONEqual(t, `{"status":"rejected","reason":"failed to fetch"}`, rejected[map[string]int]("failed to fetch"))
	})

	t.Run("batch", func(t *testing.T) {
		batch := []Envelope[int]{fulfilled(200, 7), rejected[int]("boom")}
		testutil.AssertJSONEqual(t, `[{"status":200,"data":7},{"status":"rejected","reason":"boom"}]`, batch)
	})
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fulfilled", Fulfilled.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "pending", State(0).String())
}
