//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_ParticipantFlow walks a participant through reserving a number
// and an administrator through confirming it, against the running server.
func TestE2E_ParticipantFlow(t *testing.T) {
	cleanupSlots(t)

	resp, err := getJSON(formatURL("/api/config"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg struct {
		ChallengeSize int    `json:"challenge_size"`
		Currency      string `json:"currency"`
	}
	require.NoError(t, readJSONResponse(resp, &cfg))
	require.GreaterOrEqual(t, cfg.ChallengeSize, 50)

	resp, err = getJSON(formatURL("/api/slots/25/deposit"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deposit struct {
		Number   int    `json:"number"`
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	}
	require.NoError(t, readJSONResponse(resp, &deposit))
	assert.Equal(t, 25, deposit.Number)
	assert.Equal(t, cfg.Currency, deposit.Currency)

	resp, err = postJSON(formatURL("/api/slots/reserve"), map[string]interface{}{
		"number":           25,
		"claimant_name":    "Participant",
		"claimant_contact": "+258841111111",
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = getJSON(formatURL("/api/slots/25/status"))
	require.NoError(t, err)
	var st struct {
		Status string `json:"status"`
	}
	require.NoError(t, readJSONResponse(resp, &st))
	assert.Equal(t, "pending", st.Status)

	token := login(t)

	resp, err = doRequest(http.MethodGet, formatURL("/api/admin/slots"), nil, token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Status string `json:"status"`
	}
	require.NoError(t, readJSONResponse(resp, &queue))
	require.NotEmpty(t, queue)
	assert.Equal(t, 25, queue[0].Number, "pending slots lead the queue")

	resp, err = doRequest(http.MethodPost, formatURL("/api/admin/slots/"+queue[0].ID+"/confirm"), nil, token)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	status, exists := getSlotFromDB(t, 25)
	require.True(t, exists)
	assert.Equal(t, "confirmed", status)

	resp, err = doRequest(http.MethodPost, formatURL("/api/auth/logout"), nil, token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = doRequest(http.MethodGet, formatURL("/api/admin/slots"), nil, token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "signed-out token is refused")
}

// TestE2E_SameNumberRush sends many reservations for one number at once.
// Exactly one wins; the rest see 409.
func TestE2E_SameNumberRush(t *testing.T) {
	cleanupSlots(t)

	const concurrency = 40
	var created, conflicts, other atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			resp, err := postJSON(formatURL("/api/slots/reserve"), map[string]interface{}{
				"number":           42,
				"claimant_name":    fmt.Sprintf("Racer %d", i),
				"claimant_contact": "c",
			})
			if err != nil {
				other.Add(1)
				return
			}
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(concurrency-1), conflicts.Load())
	assert.Zero(t, other.Load())

	var rows int
	require.NoError(t, testPool.QueryRow(t.Context(), "SELECT COUNT(*) FROM slots WHERE number = 42").Scan(&rows))
	assert.Equal(t, 1, rows)
}

// TestE2E_InvalidRequests checks the rejection paths the server exposes publicly.
func TestE2E_InvalidRequests(t *testing.T) {
	cleanupSlots(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing name", map[string]interface{}{"number": 1, "claimant_contact": "c"}, http.StatusBadRequest},
		{"blank name", map[string]interface{}{"number": 1, "claimant_name": "   ", "claimant_contact": "c"}, http.StatusBadRequest},
		{"zero number", map[string]interface{}{"number": 0, "claimant_name": "n", "claimant_contact": "c"}, http.StatusBadRequest},
		{"beyond size", map[string]interface{}{"number": 1000, "claimant_name": "n", "claimant_contact": "c"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := postJSON(formatURL("/api/slots/reserve"), tt.body)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp, err := getJSON(formatURL("/api/slots/abc/status"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
