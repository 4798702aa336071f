package wms

import (
	"strings"
	"testing"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
)

const soapWrap = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="http://www.example.org/Ec/">
<SOAP-ENV:Body><ns1:callServiceResponse><response>%s</response></ns1:callServiceResponse></SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

func wrap(inner string) string {
	return strings.Replace(soapWrap, "%s", inner, 1)
}

func TestDecodeResponse(t *testing.T) {
	f, ok := DecodeResponse(wrap(`{&quot;ask&quot;:&quot;Success&quot;,&quot;order_code&quot;:&quot;W-1&quot;}`))
	assert.True(t, ok)
	assert.Equal(t, "Success", f["ask"])

	_, ok = DecodeResponse("<xml>no json</xml>")
	assert.False(t, ok)

	_, ok = DecodeResponse("} backwards {")
	assert.False(t, ok)

	_, ok = DecodeResponse("{not json}")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		outcome   valueobject.Outcome
		class     valueobject.FailureClass
		orderCode string
		message   string
	}{
		{
			name:      "ask success with order code",
			body:      wrap(`{"ask":"Success","message":"ok","order_code":"W-100"}`),
			outcome:   valueobject.OutcomeSuccess,
			class:     valueobject.FailureClassNone,
			orderCode: "W-100",
			message:   "ok",
		},
		{
			name:      "entity escaped",
			body:      wrap(`{&quot;ask&quot;:&quot;success&quot;,&quot;data&quot;:{&quot;order_code&quot;:&quot;W-7&quot;}}`),
			outcome:   valueobject.OutcomeSuccess,
			class:     valueobject.FailureClassNone,
			orderCode: "W-7",
		},
		{
			name:    "status true",
			body:    `{"Status":true}`,
			outcome: valueobject.OutcomeSuccess,
			class:   valueobject.FailureClassNone,
		},
		{
			name:    "zero error code",
			body:    `{"ask":"Failure","errCode":0}`,
			outcome: valueobject.OutcomeSuccess,
			class:   valueobject.FailureClassNone,
		},
		{
			name:    "string zero code",
			body:    `{"code":"0"}`,
			outcome: valueobject.OutcomeSuccess,
			class:   valueobject.FailureClassNone,
		},
		{
			name:    "sku missing chinese",
			body:    wrap(`{"ask":"Failure","message":"SKU不存在: ABC12345"}`),
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassSKUNotFound,
			message: "SKU不存在: ABC12345",
		},
		{
			name:    "sku not found in error list",
			body:    `{"ask":"Failure","Error":[{"errCode":"E1","errMessage":"SKU ABC not found in warehouse"}]}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassSKUNotFound,
			message: "SKU ABC not found in warehouse",
		},
		{
			name:    "product does not exist",
			body:    `{"ask":"Failure","message":"Product ABC does not exist"}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassSKUNotFound,
		},
		{
			name:    "missing warehouse is not a sku failure",
			body:    `{"ask":"Failure","message":"warehouse_code NJX does not exist"}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassRejected,
			message: "warehouse_code NJX does not exist",
		},
		{
			name:    "missing shipping method is not a sku failure",
			body:    wrap(`{"ask":"Failure","message":"shipping_method does not exist"}`),
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassRejected,
		},
		{
			name:    "consignee not found is not a sku failure",
			body:    `{"ask":"Failure","message":"consignee zip not found"}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassRejected,
		},
		{
			name:    "other rejection",
			body:    `{"ask":"Failure","message":"reference_no duplicated"}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassRejected,
			message: "reference_no duplicated",
		},
		{
			name:    "rejection without message",
			body:    `{"ask":"Failure"}`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassRejected,
			message: "order rejected",
		},
		{
			name:    "marker without fragment",
			body:    wrap(`<ask>Success</ask>`),
			outcome: valueobject.OutcomeSuccess,
			class:   valueobject.FailureClassNone,
		},
		{
			name: "soap fault",
			body: `<?xml version="1.0"?><SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>` +
				`<SOAP-ENV:Fault><faultcode>SOAP-ENV:Client</faultcode><faultstring>Bad appKey</faultstring></SOAP-ENV:Fault>` +
				`</SOAP-ENV:Body></SOAP-ENV:Envelope>`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassFault,
			message: "SOAP-ENV:Client: Bad appKey",
		},
		{
			name:    "spaced marker without fragment",
			body:    `"ask" : "SUCCESS" trailing`,
			outcome: valueobject.OutcomeSuccess,
			class:   valueobject.FailureClassNone,
		},
		{
			name:    "unsuccessful prose",
			body:    "<response><result>Operation unsuccessful</result></response>",
			outcome: valueobject.OutcomeUnknown,
			class:   valueobject.FailureClassNone,
		},
		{
			name: "fault mentioning success",
			body: `<?xml version="1.0"?><SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>` +
				`<SOAP-ENV:Fault><faultcode>SOAP-ENV:Server</faultcode><faultstring>Request was not successful</faultstring></SOAP-ENV:Fault>` +
				`</SOAP-ENV:Body></SOAP-ENV:Envelope>`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassFault,
			message: "SOAP-ENV:Server: Request was not successful",
		},
		{
			name: "fault wins over embedded json",
			body: `<?xml version="1.0"?><SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>` +
				`<SOAP-ENV:Fault><faultcode>SOAP-ENV:Client</faultcode><faultstring>bad params {"ask":"Success"}</faultstring></SOAP-ENV:Fault>` +
				`</SOAP-ENV:Body></SOAP-ENV:Envelope>`,
			outcome: valueobject.OutcomeFailure,
			class:   valueobject.FailureClassFault,
		},
		{
			name:    "unrecognized",
			body:    "<html>maintenance</html>",
			outcome: valueobject.OutcomeUnknown,
			class:   valueobject.FailureClassNone,
		},
		{
			name:    "empty",
			body:    "",
			outcome: valueobject.OutcomeUnknown,
			class:   valueobject.FailureClassNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.body)
			assert.Equal(t, tt.outcome, c.Outcome)
			assert.Equal(t, tt.class, c.Class)
			if tt.orderCode != "" {
				assert.Equal(t, tt.orderCode, c.OrderCode)
			}
			if tt.message != "" {
				assert.Equal(t, tt.message, c.Message)
			}
		})
	}
}

func TestIsSKUNotFound(t *testing.T) {
	for msg, want := range map[string]bool{
		"SKU ABC not found":                 true,
		"Product XYZ99999 does not exist":   true,
		"sku not exist":                     true,
		"产品不存在":                             true,
		"warehouse_code NJX does not exist": false,
		"shipping_method does not exist":    false,
		"":                                  false,
	} {
		assert.Equal(t, want, isSKUNotFound(msg), msg)
	}
}

func TestFault_Message(t *testing.T) {
	assert.Equal(t, "code", Fault{Code: "code"}.Message())
	assert.Equal(t, "reason", Fault{Reason: "reason"}.Message())
	assert.Equal(t, "code: reason", Fault{Code: "code", Reason: "reason"}.Message())
}
