package synology

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func mustMarshal(t *testing.T, v interface{}) *json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw := json.RawMessage(data)
	return &raw
}

func TestQueryCapabilities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/webapi/query.cgi") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api") != APIInfo || q.Get("method") != "query" {
			t.Errorf("unexpected query params: %v", q)
		}
		if q.Get("query") != APIAuth+","+APITask {
			t.Errorf("unexpected query families: %s", q.Get("query"))
		}
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Data: mustMarshal(t, Capabilities{
				APIAuth: {MinVersion: 1, MaxVersion: 7, Path: "auth.cgi"},
				APITask: {MinVersion: 1, MaxVersion: 3, Path: "DownloadStation/task.cgi"},
			}),
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	caps, err := client.QueryCapabilities(context.Background())
	if err != nil {
		t.Fatalf("QueryCapabilities() error = %v", err)
	}

	if got := caps.MaxVersion(APIAuth, "2"); got != "7" {
		t.Errorf("auth max version = %s, want 7", got)
	}
	if got := caps.MaxVersion(APITask, "1"); got != "3" {
		t.Errorf("task max version = %s, want 3", got)
	}
	if got := caps.MaxVersion("SYNO.Unknown", "1"); got != "1" {
		t.Errorf("unknown family version = %s, want default 1", got)
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api") != APIAuth || q.Get("method") != "login" {
			t.Errorf("unexpected call: %v", q)
		}
		if q.Get("account") != "user" || q.Get("passwd") != "pass" {
			t.Errorf("credentials not forwarded: %v", q)
		}
		if q.Get("session") != "DownloadStation" || q.Get("format") != "sid" {
			t.Errorf("unexpected session params: %v", q)
		}
		if q.Get("version") != "7" {
			t.Errorf("version = %s, want 7", q.Get("version"))
		}
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Data:    mustMarshal(t, authData{SID: "test-sid"}),
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	sid, err := client.Login(context.Background(), "7", "user", "pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sid != "test-sid" {
		t.Errorf("sid = %q, want test-sid", sid)
	}
}

func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{
			Success: false,
			Error:   &apiErrorData{Code: 400},
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	_, err := client.Login(context.Background(), "7", "user", "wrong")
	if err == nil {
		t.Fatal("Login() expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("code = %d, want 400", apiErr.Code)
	}
	if !apiErr.IsAuthFailure() {
		t.Error("code 400 should classify as auth failure")
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError() = false, want true")
	}
}

func TestListTasks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "list" {
			t.Errorf("method = %s, want list", q.Get("method"))
		}
		if q.Get("additional") != "detail,transfer" {
			t.Errorf("additional = %s", q.Get("additional"))
		}
		if q.Get("_sid") != "sid-1" {
			t.Errorf("_sid = %s, want sid-1", q.Get("_sid"))
		}
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Data: mustMarshal(t, listData{Tasks: []Task{
				{
					ID:     "dbid_1",
					Title:  "ubuntu.iso",
					Size:   1000,
					Status: StatusSeeding,
					Type:   "bt",
					Additional: &TaskAdditional{
						Detail:   &TaskDetail{Destination: "downloads/iso", CompletedTime: 1700000000},
						Transfer: &TaskTransfer{SizeUploaded: "512", SizeDownloaded: "1000"},
					},
				},
			}}),
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	tasks, err := client.ListTasks(context.Background(), "1", "sid-1")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}

	task := tasks[0]
	if task.SizeUploaded() != 512 {
		t.Errorf("SizeUploaded() = %d, want 512", task.SizeUploaded())
	}
	if task.SizeDownloaded() != 1000 {
		t.Errorf("SizeDownloaded() = %d, want 1000", task.SizeDownloaded())
	}
	if task.CompletedTime() != 1700000000 {
		t.Errorf("CompletedTime() = %d, want 1700000000", task.CompletedTime())
	}
	if task.Destination() != "downloads/iso" {
		t.Errorf("Destination() = %q", task.Destination())
	}
}

func TestTaskAccessorsWithoutAdditional(t *testing.T) {
	task := Task{ID: "dbid_2", Size: 42}
	if task.SizeUploaded() != 0 {
		t.Errorf("SizeUploaded() = %d, want 0", task.SizeUploaded())
	}
	if task.CompletedTime() != 0 {
		t.Errorf("CompletedTime() = %d, want 0", task.CompletedTime())
	}
	if task.Destination() != "" {
		t.Errorf("Destination() = %q, want empty", task.Destination())
	}
}

func TestDeleteTasks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "delete" {
			t.Errorf("method = %s, want delete", q.Get("method"))
		}
		if q.Get("id") != "dbid_1,dbid_2" {
			t.Errorf("id = %s", q.Get("id"))
		}
		if q.Get("force_complete") != "true" {
			t.Errorf("force_complete = %s, want true", q.Get("force_complete"))
		}
		json.NewEncoder(w).Encode(apiResponse{
			Success: true,
			Data: mustMarshal(t, []DeleteResult{
				{ID: "dbid_1", Error: 0},
				{ID: "dbid_2", Error: 544},
			}),
		})
	}))
	defer server.Close()

	client := New(server.URL, 0)
	results, err := client.DeleteTasks(context.Background(), "1", "sid-1", []string{"dbid_1", "dbid_2"}, true)
	if err != nil {
		t.Fatalf("DeleteTasks() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if !results[0].OK() || results[1].OK() {
		t.Errorf("unexpected outcomes: %+v", results)
	}
}

func TestDeleteTasksEmptyIDs(t *testing.T) {
	client := New("http://unreachable.invalid", 0)
	if _, err := client.DeleteTasks(context.Background(), "1", "sid", nil, true); err == nil {
		t.Fatal("DeleteTasks() with no ids expected error")
	}
}
