package remote

import (
	"encoding/json"
	"net/http"
)

// StatusOK is the envelope status value the storefront API uses for logical
// success. Any other value routes to the error callback, regardless of the
// HTTP status code.
const StatusOK = "OK"

// unknownErrorReason is the fallback failure reason when neither the envelope
// nor the HTTP response yields a human-readable message. A malformed body is
// never a silent empty success.
const unknownErrorReason = "Unknown error"

// Envelope is the JSON wrapper every storefront API response uses:
// {status, results, message}. Results maps a resource name to its payload,
// which may be a single object or a list.
type Envelope struct {
	Status  string                     `json:"status"`
	Results map[string]json.RawMessage `json:"results"`
	Message string                     `json:"message"`
}

// decodeEnvelope interprets an upstream response body per the envelope
// contract and returns the raw payload for resourceKey.
//
// Precedence:
//   - unparseable body: the HTTP status text for non-2xx, otherwise
//     "Unknown error"
//   - non-2xx HTTP status or envelope status != "OK": failure. The reason
//     is the envelope message, falling back to the HTTP status text,
//     falling back to "Unknown error". A non-2xx response is never a
//     success, even when its body claims status "OK".
//   - 2xx with envelope status == "OK" and resourceKey absent: success
//     with a nil payload (callers decode nil as the zero value / empty
//     list)
func decodeEnvelope(httpStatus int, body []byte, resourceKey string) (payload json.RawMessage, reason string, ok bool) {
	httpFailed := httpStatus < 200 || httpStatus > 299

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if httpFailed {
			return nil, statusReason(httpStatus), false
		}
		return nil, unknownErrorReason, false
	}

	if env.Status != StatusOK || httpFailed {
		if env.Message != "" {
			return nil, env.Message, false
		}
		if httpFailed {
			return nil, statusReason(httpStatus), false
		}
		return nil, unknownErrorReason, false
	}

	raw, present := env.Results[resourceKey]
	if !present {
		return nil, "", true
	}
	return raw, "", true
}

// statusReason returns the HTTP status text, or the generic fallback for
// unassigned codes.
func statusReason(httpStatus int) string {
	if text := http.StatusText(httpStatus); text != "" {
		return text
	}
	return unknownErrorReason
}
