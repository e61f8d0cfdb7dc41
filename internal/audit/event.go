package audit

import (
	"fmt"
	"strings"
)

// Event describes one completed job for the downstream audit consumer.
type Event struct {
	JobID             string
	UserID            string
	Host              string
	WorkflowState     string
	WorkflowTimestamp string
	ErrorMessage      string
	Paths             []string
	AuditPath         string
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// XML renders the event as the auditEventList document expected by the
// broker. Every free-text field is escaped so log-derived content cannot
// corrupt the document structure.
func (e Event) XML() string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n")
	b.WriteString("<auditEventList xmlns=\"http://www.example.com/AuditEvent\">\n")
	b.WriteString("    <auditEvent>\n")
	b.WriteString("        <actor>\n")
	fmt.Fprintf(&b, "            <id>%s</id>\n", escaper.Replace(e.UserID))
	fmt.Fprintf(&b, "            <name>%s</name>\n", escaper.Replace(e.UserID))
	b.WriteString("        </actor>\n")
	b.WriteString("        <application>\n")
	b.WriteString("            <component>KNIME Server</component>\n")
	fmt.Fprintf(&b, "            <hostName>%s</hostName>\n", escaper.Replace(e.Host))
	b.WriteString("            <name>KNIME</name>\n")
	b.WriteString("        </application>\n")
	b.WriteString("        <action>\n")
	fmt.Fprintf(&b, "            <actionType>%s</actionType>\n", escaper.Replace(e.WorkflowState))
	fmt.Fprintf(&b, "            <additionalInfo name=\"jobId\">%s</additionalInfo>\n", escaper.Replace(e.JobID))
	fmt.Fprintf(&b, "            <additionalInfo name=\"errorMessage\">%s</additionalInfo>\n", escaper.Replace(e.ErrorMessage))
	fmt.Fprintf(&b, "            <additionalInfo name=\"paths\">%s</additionalInfo>\n", escaper.Replace(strings.Join(e.Paths, ",")))
	fmt.Fprintf(&b, "            <additionalInfo name=\"audit_path\">%s</additionalInfo>\n", escaper.Replace(e.AuditPath))
	fmt.Fprintf(&b, "            <timestamp>%s</timestamp>\n", escaper.Replace(e.WorkflowTimestamp))
	b.WriteString("        </action>\n")
	b.WriteString("    </auditEvent>\n")
	b.WriteString("</auditEventList>\n")
	return b.String()
}
