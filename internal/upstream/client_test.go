package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClient_Login_Success(t *testing.T) {
	t.Parallel()
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    200,
			"message": "Login successful",
			"data": map[string]string{
				"username":       "alice",
				"email":          "a@example.com",
				"authToken":      "sess-1",
				"sessionExpires": "2026-09-01 10:00:00",
			},
		})
	})

	reply := c.Login(context.Background(), "tok-123")
	require.True(t, reply.Success)
	require.Equal(t, "tok-123", gotBody["authToken"])
	require.Equal(t, "alice", reply.Data.Username)
	require.Equal(t, "sess-1", reply.Data.AuthToken)
}

func TestClient_Login_Failures(t *testing.T) {
	t.Parallel()

	t.Run("http error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		reply := c.Login(context.Background(), "tok")
		require.False(t, reply.Success)
		require.Equal(t, "HTTP Error 403", reply.Message)
	})

	t.Run("wrong envelope", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 401, "message": "Invalid token"})
		})
		reply := c.Login(context.Background(), "tok")
		require.False(t, reply.Success)
		require.Equal(t, "Invalid token", reply.Message)
	})

	t.Run("not json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>nope</html>"))
		})
		reply := c.Login(context.Background(), "tok")
		require.False(t, reply.Success)
		require.Contains(t, reply.Message, "invalid JSON response")
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", 250*time.Millisecond)
		reply := c.Login(context.Background(), "tok")
		require.False(t, reply.Success)
		require.Contains(t, reply.Message, "login error")
	})
}

func TestClient_FetchNumber_RelaysVerbatim(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sms/getnum", r.URL.Path)
		var data map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
		require.Equal(t, "24996218XXXX", data["numberRange"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream exploded"}`))
	})

	resp, err := c.FetchNumber(context.Background(), DefaultFetchConfig(c.BaseURL(), ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.Status)
	require.Equal(t, "application/json", resp.ContentType)
	require.JSONEq(t, `{"error":"upstream exploded"}`, string(resp.Body))
}

func TestClient_AccessList_SortDropTruncate(t *testing.T) {
	t.Parallel()
	rows := []map[string]string{
		{"Test number": "B", "Datetime": "2024-01-01 00:00:00"},
		{"Test number": "A", "Datetime": "2024-01-02 00:00:00"},
		{"Test number": "  ", "Datetime": "2024-01-03 00:00:00"},
		{"Test number": "C", "Datetime": "not a date"},
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "get_access_list", r.URL.Query().Get("action"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "results": rows})
	})

	res := c.AccessList(context.Background(), CallConfig{})
	require.True(t, res.Success)
	require.Equal(t, 4, res.TotalResults)

	var order []string
	for _, n := range res.WorkingNumbers {
		order = append(order, n.TestNumber)
	}
	// newest first, blank numbers dropped, unparseable datetimes last
	require.Equal(t, []string{"A", "B", "C"}, order)
}

func TestClient_AccessList_Truncates(t *testing.T) {
	t.Parallel()
	var rows []map[string]string
	for i := 0; i < 15; i++ {
		rows = append(rows, map[string]string{
			"Test number": string(rune('a' + i)),
			"Datetime":    time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02 15:04:05"),
		})
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "results": rows})
	})

	res := c.AccessList(context.Background(), CallConfig{})
	require.True(t, res.Success)
	require.Len(t, res.WorkingNumbers, 10)
	require.Equal(t, 15, res.TotalResults)
	require.Equal(t, "o", res.WorkingNumbers[0].TestNumber)
}

func TestClient_AccessList_BadShapes(t *testing.T) {
	t.Parallel()

	t.Run("success false", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
		})
		res := c.AccessList(context.Background(), CallConfig{})
		require.False(t, res.Success)
		require.Equal(t, "Invalid response format", res.Error)
	})

	t.Run("http error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		res := c.AccessList(context.Background(), CallConfig{})
		require.False(t, res.Success)
		require.Equal(t, "HTTP 500", res.Error)
	})
}

func TestClient_Balance_SumsAndRounds(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/summary/29", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"amount": 1.1, "otp": 3.0, "date": "2026-08-28"},
			{"amount": 2.229, "otp": 1.0, "date": "2026-08-27"},
		})
	})

	res := c.Balance(context.Background(), CallConfig{})
	require.True(t, res.Success)
	require.Equal(t, 1.1, res.TodayBalance)
	require.Equal(t, 3.0, res.TodayOTP)
	require.Equal(t, "2026-08-28", res.TodayDate)
	require.Equal(t, 3.329, res.TotalBalance)
}

func TestClient_Balance_EmptyArray(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	res := c.Balance(context.Background(), CallConfig{})
	require.False(t, res.Success)
	require.Equal(t, "No balance data available", res.Error)
}

func TestParseSessionExpires(t *testing.T) {
	t.Parallel()

	got, ok := ParseSessionExpires("2026-09-01 10:30:00")
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), got)

	got, ok = ParseSessionExpires("2026-09-01T10:30:00")
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC), got)

	_, ok = ParseSessionExpires("soon")
	require.False(t, ok)
}
