package amqp

import (
	"github.com/rabbitmq/amqp091-go"

	"finanzas/internal/core"
	"finanzas/internal/sinks"
)

// ReportType tags published reports so consumers can route on it.
const ReportType = "finanzas.report"

// ReportInfo is the metadata carried in the message headers next to the
// plain-text report body.
type ReportInfo struct {
	Filename   string
	Days       int
	NetBalance string
}

// NewReportInfo summarizes r for the message headers.
func NewReportInfo(r sinks.Report) ReportInfo {
	return ReportInfo{
		Filename:   r.Filename("txt"),
		Days:       len(r.Days),
		NetBalance: core.SumTotals(r.Days).NetBalance.StringFixed(2),
	}
}

// Headers converts the info to an AMQP table.
func (i ReportInfo) Headers() amqp091.Table {
	return amqp091.Table{
		"filename":    i.Filename,
		"days":        int32(i.Days),
		"net_balance": i.NetBalance,
	}
}

// NewPublishing builds the persistent text/plain message for r.
func NewPublishing(r sinks.Report, messageID string) amqp091.Publishing {
	return amqp091.Publishing{
		ContentType:     "text/plain",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp091.Persistent,
		MessageId:       messageID,
		Timestamp:       r.Generated,
		Type:            ReportType,
		Headers:         NewReportInfo(r).Headers(),
		Body:            []byte(r.Text),
	}
}
