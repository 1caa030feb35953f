package api

import (
	"encoding/xml"

	"github.com/shopspring/decimal"
)

// PricePoint is one element of the price API's JSON array.
type PricePoint struct {
	SEKPerKWh decimal.NullDecimal `json:"SEK_per_kWh"` // Invalid when missing or null
	EURPerKWh decimal.NullDecimal `json:"EUR_per_kWh"`
	EXR       decimal.NullDecimal `json:"EXR"`
	TimeStart string              `json:"time_start"`
	TimeEnd   string              `json:"time_end"`
}

// LoadDocumentNamespace is the namespace of ENTSO-E generation/load documents.
const LoadDocumentNamespace = "urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0"

// acknowledgementRoot is the root element ENTSO-E uses for errors and "no data" replies.
const acknowledgementRoot = "Acknowledgement_MarketDocument"

// LoadDocument is a GL_MarketDocument (documentType A65).
// Point values stay as text; conversion validates them.
type LoadDocument struct {
	XMLName     xml.Name         `xml:"urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0 GL_MarketDocument"`
	MRID        string           `xml:"mRID"`
	Type        string           `xml:"type"`
	ProcessType string           `xml:"process.processType"`
	TimeSeries  []LoadTimeSeries `xml:"TimeSeries"`
}

// LoadTimeSeries is one TimeSeries element.
type LoadTimeSeries struct {
	MRID     string       `xml:"mRID"`
	Domain   string       `xml:"outBiddingZone_Domain.mRID"`
	UnitName string       `xml:"quantity_Measure_Unit.name"`
	Periods  []LoadPeriod `xml:"Period"`
}

// LoadPeriod is one Period of a TimeSeries.
type LoadPeriod struct {
	Start      string      `xml:"timeInterval>start"`
	End        string      `xml:"timeInterval>end"`
	Resolution string      `xml:"resolution"`
	Points     []LoadPoint `xml:"Point"`
}

// LoadPoint is one Point of a Period.
type LoadPoint struct {
	Position string `xml:"position"`
	Quantity string `xml:"quantity"`
}

// acknowledgementDocument is the body of an Acknowledgement_MarketDocument.
type acknowledgementDocument struct {
	MRID    string `xml:"mRID"`
	Reasons []struct {
		Code string `xml:"code"`
		Text string `xml:"text"`
	} `xml:"Reason"`
}
