package api

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"
)

// ENTSO-E request parameters for realised total load.
const (
	DocumentTypeTotalLoad = "A65"
	ProcessTypeRealised   = "A16"

	periodLayout = "200601021504" // yyyyMMddHHmm, UTC
)

// AcknowledgementError is returned when ENTSO-E answers with an
// Acknowledgement_MarketDocument instead of data.
type AcknowledgementError struct {
	Code   string
	Reason string
}

func (e *AcknowledgementError) Error() string {
	return fmt.Sprintf("entsoe acknowledgement %s: %s", e.Code, e.Reason)
}

// GetLoad fetches realised total load for an area over [start, end).
func (c *Client) GetLoad(ctx context.Context, domain string, start, end time.Time) (*LoadDocument, error) {
	query := url.Values{}
	query.Set("documentType", DocumentTypeTotalLoad)
	query.Set("processType", ProcessTypeRealised)
	query.Set("outBiddingZone_Domain", domain)
	query.Set("periodStart", start.UTC().Format(periodLayout))
	query.Set("periodEnd", end.UTC().Format(periodLayout))
	query.Set("securityToken", c.token)

	body, err := c.doWithRetry(ctx, "", query, "application/xml")
	if err != nil {
		return nil, fmt.Errorf("get load %s: %w", domain, err)
	}

	// Checked before decoding so an acknowledgement never reaches point parsing.
	if ack, ok := parseAcknowledgement(body); ok {
		return nil, fmt.Errorf("get load %s: %w", domain, ack)
	}

	var doc LoadDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal load document: %w", err)
	}

	return &doc, nil
}

// parseAcknowledgement reports whether body is an acknowledgement document
// and extracts its first reason.
func parseAcknowledgement(body []byte) (*AcknowledgementError, bool) {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, false
	}

	dec := xml.NewDecoder(bytes.NewReader(trimmed))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue // prolog, comments, whitespace
		}
		if start.Name.Local != acknowledgementRoot {
			return nil, false
		}

		ack := &AcknowledgementError{}
		var doc acknowledgementDocument
		if err := dec.DecodeElement(&doc, &start); err == nil && len(doc.Reasons) > 0 {
			ack.Code = doc.Reasons[0].Code
			ack.Reason = doc.Reasons[0].Text
		}
		return ack, true
	}
}
