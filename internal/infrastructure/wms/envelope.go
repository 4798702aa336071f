package wms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

const envelopeTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="http://www.example.org/Ec/">
  <SOAP-ENV:Body>
    <ns1:callService>
      <paramsJson>
%s
      </paramsJson>
      <appToken>%s</appToken>
      <appKey>%s</appKey>
      <service>%s</service>
    </ns1:callService>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

// EncodePayload renders p as compact JSON without HTML escaping, so
// non-ASCII names and "&" in addresses reach the warehouse unchanged.
func EncodePayload(p domainwms.Payload) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("wms: failed to encode payload: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Envelope embeds paramsJSON and the credentials in the callService
// envelope. Values are inserted verbatim; the service does not accept
// XML-escaped JSON.
func Envelope(paramsJSON, appToken, appKey, service string) string {
	return fmt.Sprintf(envelopeTemplate, paramsJSON, appToken, appKey, service)
}
