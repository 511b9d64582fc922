package trafikverket

import "fmt"

const DataCacheEndpoint = "https://api.trafikinfo.trafikverket.se/v2/data.xml"

const situationSchemaVersion = "1.6"

// BuildSituationRequest renders the DataCache query for all non-deleted
// Road.TrafficInfo situations, pulling full Deviation objects.
//
// Request schema: https://data.trafikverket.se/documentation/datacache/the-request
func BuildSituationRequest(apiKey string, limit int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>`+
		`<REQUEST>`+
		`<LOGIN authenticationkey="%s" />`+
		`<QUERY objecttype="Situation" namespace="Road.TrafficInfo" schemaversion="%s" limit="%d">`+
		`<FILTER>`+
		`<AND>`+
		`<EQ name="Deleted" value="false" />`+
		`</AND>`+
		`</FILTER>`+
		`<INCLUDE>CountryCode</INCLUDE>`+
		`<INCLUDE>Deleted</INCLUDE>`+
		`<INCLUDE>Id</INCLUDE>`+
		`<INCLUDE>PublicationTime</INCLUDE>`+
		`<INCLUDE>VersionTime</INCLUDE>`+
		`<INCLUDE>ModifiedTime</INCLUDE>`+
		`<INCLUDE>Deviation</INCLUDE>`+
		`</QUERY>`+
		`</REQUEST>`,
		apiKey, situationSchemaVersion, limit)
}
