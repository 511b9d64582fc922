package trafikverket

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Situation is one Road.TrafficInfo situation as returned by the DataCache
// API. All leaf values stay strings on the wire struct; conversion happens
// during normalisation so one malformed value cannot fail the decode.
type Situation struct {
	ID              string `xml:"Id"`
	Deleted         string
	PublicationTime string
	VersionTime     string
	ModifiedTime    string

	Deviation []Deviation
}

type Deviation struct {
	ID     string `xml:"Id"`
	IconID string `xml:"IconId"`

	MessageType      string
	MessageTypeValue string

	Header  string
	Message string

	SeverityCode string
	SeverityText string

	RoadNumber string
	RoadName   string
	CountyNo   []string

	AffectedDirection       string
	TrafficRestrictionType  string
	TemporaryLimit          string
	NumberOfLanesRestricted string
	SafetyRelatedMessage    string

	LocationDescriptor    string
	PositionalDescription string

	StartTime               string
	EndTime                 string
	ValidUntilFurtherNotice string
	Suspended               string

	WebLink string

	GeometryWGS84 string `xml:"Geometry>Point>WGS84"`
}

// FetchResult is one parsed DataCache response.
type FetchResult struct {
	Situations []Situation

	LastModified string
	LastChangeID string
	SSEURL       string
}

type responseError struct {
	Source  string `xml:"SOURCE"`
	Message string `xml:"MESSAGE"`
}

type responseInfo struct {
	LastModified struct {
		DateTime string `xml:"datetime,attr"`
	} `xml:"LASTMODIFIED"`
	LastChangeID string `xml:"LASTCHANGEID"`
	SSEURL       string `xml:"SSEURL"`
}

// ParseResponse streams the response XML, decoding each Situation element as
// it appears.
func ParseResponse(reader io.Reader) (*FetchResult, error) {
	result := &FetchResult{}

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := d.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			switch ty.Name.Local {
			case "Situation":
				var situation Situation
				if err = d.DecodeElement(&situation, &ty); err != nil {
					return nil, &ParseError{Err: err}
				}
				result.Situations = append(result.Situations, situation)
			case "ERROR":
				var respError responseError
				if err = d.DecodeElement(&respError, &ty); err != nil {
					return nil, &ParseError{Err: err}
				}

				message := strings.TrimSpace(respError.Message)
				lowered := strings.ToLower(message)
				if strings.Contains(lowered, "authentication") || strings.Contains(lowered, "invalid key") {
					return nil, &AuthenticationError{Message: message}
				}
				return nil, &APIError{Message: message}
			case "INFO":
				var info responseInfo
				if err = d.DecodeElement(&info, &ty); err != nil {
					return nil, &ParseError{Err: err}
				}
				result.LastModified = info.LastModified.DateTime
				result.LastChangeID = strings.TrimSpace(info.LastChangeID)
				result.SSEURL = strings.TrimSpace(info.SSEURL)
			}
		}
	}

	return result, nil
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("trafikverket api returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("trafikverket api error: %s", e.Message)
}

type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid xml from trafikverket: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
