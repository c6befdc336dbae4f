package model_test

import (
	"encoding/json"
	"testing"

	"github.com/Khootz/hkustjob/internal/model"
)

// ── AppliedState ───────────────────────────────────────────────────────────

func TestAppliedState_DecodesBoolAndNoEmail(t *testing.T) {
	raw := `[
		{"company":"A","job_title":"x","applied":true,"letter":false},
		{"company":"B","job_title":"y","applied":false,"letter":true},
		{"company":"C","job_title":"z","applied":"NO EMAIL","letter":false}
	]`
	var jobs []model.Job
	if err := json.Unmarshal([]byte(raw), &jobs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !jobs[0].Applied.Applied || jobs[0].Applied.NoEmail {
		t.Errorf("jobs[0].Applied = %+v, want applied", jobs[0].Applied)
	}
	if jobs[1].Applied.Applied || jobs[1].Applied.NoEmail {
		t.Errorf("jobs[1].Applied = %+v, want not applied", jobs[1].Applied)
	}
	if !jobs[2].Applied.NoEmail {
		t.Errorf("jobs[2].Applied = %+v, want NO EMAIL", jobs[2].Applied)
	}
}

func TestAppliedState_RejectsUnknownString(t *testing.T) {
	var a model.AppliedState
	if err := json.Unmarshal([]byte(`"maybe"`), &a); err == nil {
		t.Error("unmarshal of \"maybe\" should fail")
	}
}

func TestAppliedState_EncodesNoEmailLiteral(t *testing.T) {
	out, err := json.Marshal(model.NoEmailState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"NO EMAIL"` {
		t.Errorf("marshal = %s, want \"NO EMAIL\"", out)
	}
}

// ── ScrapingResponse ───────────────────────────────────────────────────────

func TestScrapingResponse_FailureHasNoData(t *testing.T) {
	var resp model.ScrapingResponse
	if err := json.Unmarshal([]byte(`{"success":false,"message":"PHP Session ID is required"}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success || resp.Data != nil {
		t.Errorf("resp = %+v, want failure without data", resp)
	}
	if got := resp.Data.ExcelPath(); got != "" {
		t.Errorf("ExcelPath on nil data = %q, want empty", got)
	}
}

func TestScrapingResponse_AcceptsFlatBackendCounters(t *testing.T) {
	raw := `{"success":true,"message":"ok","data":{
		"jobs":[{"company":"A","job_title":"x","link":"https://example.test/1","page":2,"applied":false,"letter":false}],
		"total_jobs":1,"pages_scraped":[2],"excel_file_path":"/tmp/hkust_jobs.xlsx"}}`
	var resp model.ScrapingResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.TotalJobs != 1 || len(resp.Data.PagesScraped) != 1 {
		t.Errorf("flat counters not decoded: %+v", resp.Data)
	}
	if got := resp.Data.ExcelPath(); got != "/tmp/hkust_jobs.xlsx" {
		t.Errorf("ExcelPath = %q", got)
	}
	if got := resp.Data.Jobs[0].URL(); got != "https://example.test/1" {
		t.Errorf("URL() = %q, want link fallback", got)
	}
}
