package trafikverket

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<RESPONSE>
	<RESULT>
		<Situation>
			<Id>SWE-SIT-1</Id>
			<Deleted>false</Deleted>
			<PublicationTime>2026-08-20T07:00:00+02:00</PublicationTime>
			<VersionTime>2026-08-20T07:05:00+02:00</VersionTime>
			<ModifiedTime>2026-08-20T07:05:00+02:00</ModifiedTime>
			<Deviation>
				<Id>SWE-DEV-1</Id>
				<MessageType>Olycka</MessageType>
				<MessageTypeValue>Accident</MessageTypeValue>
				<Header>Olycka E6 Kungälv</Header>
				<Message>Olycka med personbil, ett körfält avstängt</Message>
				<SeverityCode>3</SeverityCode>
				<SeverityText>Stor påverkan</SeverityText>
				<RoadNumber>E6</RoadNumber>
				<CountyNo>14</CountyNo>
				<SafetyRelatedMessage>false</SafetyRelatedMessage>
				<StartTime>2026-08-20T07:00:00+02:00</StartTime>
				<Geometry>
					<Point>
						<WGS84>POINT (11.97 57.87)</WGS84>
					</Point>
				</Geometry>
			</Deviation>
			<Deviation>
				<Id>SWE-DEV-2</Id>
				<MessageType>Vägarbete</MessageType>
				<Suspended>true</Suspended>
			</Deviation>
		</Situation>
		<Situation>
			<Id>SWE-SIT-2</Id>
			<Deleted>true</Deleted>
			<Deviation>
				<Id>SWE-DEV-3</Id>
				<MessageType>Hinder</MessageType>
			</Deviation>
		</Situation>
		<INFO>
			<LASTMODIFIED datetime="2026-08-20T07:05:00+02:00" />
			<LASTCHANGEID>7215</LASTCHANGEID>
		</INFO>
	</RESULT>
</RESPONSE>`

func TestParseResponse(t *testing.T) {
	result, err := ParseResponse(strings.NewReader(sampleResponseXML))
	require.NoError(t, err)

	require.Len(t, result.Situations, 2)

	situation := result.Situations[0]
	assert.Equal(t, "SWE-SIT-1", situation.ID)
	require.Len(t, situation.Deviation, 2)

	deviation := situation.Deviation[0]
	assert.Equal(t, "SWE-DEV-1", deviation.ID)
	assert.Equal(t, "Olycka", deviation.MessageType)
	assert.Equal(t, "POINT (11.97 57.87)", strings.TrimSpace(deviation.GeometryWGS84))
	assert.Equal(t, []string{"14"}, deviation.CountyNo)

	assert.Equal(t, "2026-08-20T07:05:00+02:00", result.LastModified)
	assert.Equal(t, "7215", result.LastChangeID)
}

func TestParseResponseAuthenticationError(t *testing.T) {
	errorXML := `<RESPONSE><RESULT><ERROR><SOURCE>securitymanager</SOURCE><MESSAGE>Invalid authentication</MESSAGE></ERROR></RESULT></RESPONSE>`

	_, err := ParseResponse(strings.NewReader(errorXML))

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid authentication", authErr.Message)
}

func TestParseResponseAPIError(t *testing.T) {
	errorXML := `<RESPONSE><RESULT><ERROR><SOURCE>parser</SOURCE><MESSAGE>Unknown object type</MESSAGE></ERROR></RESULT></RESPONSE>`

	_, err := ParseResponse(strings.NewReader(errorXML))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unknown object type", apiErr.Message)
}

func TestParseResponseMalformedXML(t *testing.T) {
	_, err := ParseResponse(strings.NewReader("<RESPONSE><RESULT><Situation><Id>"))

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNormalize(t *testing.T) {
	result, err := ParseResponse(strings.NewReader(sampleResponseXML))
	require.NoError(t, err)

	now := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	incidents := Normalize(result, now)

	// Suspended deviation and deleted situation are skipped.
	require.Len(t, incidents, 1)

	incident := incidents[0]
	assert.Equal(t, "SWE-DEV-1", incident.IncidentKey)
	assert.Equal(t, "SWE-SIT-1", incident.SituationID)
	assert.Equal(t, "Olycka med personbil, ett körfält avstängt", incident.Message)
	assert.Equal(t, 3, incident.SeverityCode)
	assert.Equal(t, []int{14}, incident.CountyNumbers)
	assert.Equal(t, "POINT (11.97 57.87)", incident.Geometry)
	assert.False(t, incident.StartTime.IsZero())
	assert.False(t, incident.SafetyRelatedMessage)
}

func TestNormalizeSkipsEndedDeviations(t *testing.T) {
	result := &FetchResult{
		Situations: []Situation{
			{
				ID: "SIT-1",
				Deviation: []Deviation{
					{ID: "ENDED", EndTime: "2026-08-20T06:00:00+02:00"},
					{ID: "OPEN-ENDED"},
					{ID: "ONGOING", EndTime: "2026-08-20T23:00:00+02:00"},
				},
			},
		},
	}

	now := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	incidents := Normalize(result, now)

	require.Len(t, incidents, 2)
	assert.Equal(t, "OPEN-ENDED", incidents[0].IncidentKey)
	assert.Equal(t, "ONGOING", incidents[1].IncidentKey)
}

func TestBuildSituationRequest(t *testing.T) {
	request := BuildSituationRequest("secret-key", 25)

	assert.Contains(t, request, `authenticationkey="secret-key"`)
	assert.Contains(t, request, `objecttype="Situation"`)
	assert.Contains(t, request, `limit="25"`)
}
