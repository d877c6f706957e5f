// Package domain models the volunteer coverage data shown on the public
// volunteer page and the outcome of a volunteer registration.
//
// # Data Source
//
// Volunteer locations come from the volunteer backend's
// /getVolunteerLocations endpoint. The backend resolves each registered
// volunteer's zipcode to a coordinate and groups the points by city bucket:
//
//	{
//	  "total": 3,
//	  "count": 2,
//	  "locations": [
//	    {"city": "Lund", "zipcode": "22100",
//	     "data": [{"coordinates": [55.7, 13.2], "count": 2, "city": "Lund", "zipcode": "22100"}]}
//	  ]
//	}
//
// Coordinates are encoded latitude first, the order the map widget expects.
// This is the reverse of GeoJSON and of [orb.Point]; use [Coordinates.Point]
// to convert.
//
// # Validation
//
// A point with an out-of-range coordinate cannot be placed on the map. It is
// reported as [ErrInvalidCoordinates] rather than silently dropped so that a
// bad backend payload is visible in tests and logs.
//
// # Registration Outcomes
//
// The registration form reports a payload with a "type" field. Only
// "success" and "failure" are recognised; any other value is classified as
// [OutcomeUnknown] and shown with the success message.
package domain
