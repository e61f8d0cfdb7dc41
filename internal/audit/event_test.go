package audit

import (
	"encoding/xml"
	"strings"
	"testing"
)

func testEvent() Event {
	return Event{
		JobID:             "job-7",
		UserID:            "alice",
		Host:              "knime01",
		WorkflowState:     "EXECUTED",
		WorkflowTimestamp: "2025-08-30T09:15:42.123+02:00",
		ErrorMessage:      "",
		Paths:             []string{"data/input.csv", "data/out.csv"},
		AuditPath:         "/backups/20250830/job-7-20250830091542",
	}
}

func TestXMLContainsFields(t *testing.T) {
	doc := testEvent().XML()
	for _, want := range []string{
		"<id>alice</id>",
		"<hostName>knime01</hostName>",
		"<actionType>EXECUTED</actionType>",
		`<additionalInfo name="jobId">job-7</additionalInfo>`,
		`<additionalInfo name="paths">data/input.csv,data/out.csv</additionalInfo>`,
		`<additionalInfo name="audit_path">/backups/20250830/job-7-20250830091542</additionalInfo>`,
		"<timestamp>2025-08-30T09:15:42.123+02:00</timestamp>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("missing %q in:\n%s", want, doc)
		}
	}
}

func TestXMLEscapesFreeText(t *testing.T) {
	e := testEvent()
	e.ErrorMessage = `node failed: value < 3 & flag "on" isn't set`
	e.UserID = "al<ice>"
	doc := e.XML()

	if strings.Contains(doc, "value < 3") {
		t.Fatalf("unescaped '<' leaked into document")
	}
	if !strings.Contains(doc, "value &lt; 3 &amp; flag &quot;on&quot; isn&apos;t set") {
		t.Fatalf("error message not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "<id>al&lt;ice&gt;</id>") {
		t.Fatalf("user id not escaped:\n%s", doc)
	}

	// the result must stay well-formed for the downstream consumer
	var parsed struct {
		XMLName xml.Name `xml:"auditEventList"`
	}
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("document not well-formed: %v", err)
	}
}

func TestXMLWellFormed(t *testing.T) {
	var parsed struct {
		XMLName    xml.Name `xml:"auditEventList"`
		AuditEvent struct {
			Actor struct {
				ID string `xml:"id"`
			} `xml:"actor"`
			Action struct {
				ActionType string `xml:"actionType"`
				Timestamp  string `xml:"timestamp"`
			} `xml:"action"`
		} `xml:"auditEvent"`
	}
	if err := xml.Unmarshal([]byte(testEvent().XML()), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.AuditEvent.Actor.ID != "alice" {
		t.Fatalf("actor id %q", parsed.AuditEvent.Actor.ID)
	}
	if parsed.AuditEvent.Action.ActionType != "EXECUTED" {
		t.Fatalf("action type %q", parsed.AuditEvent.Action.ActionType)
	}
}
