package protocol

import "github.com/plgd-dev/go-coap/v2/message/codes"

// Resource paths for the dispatcher's three POST endpoints.
const (
	PathFloorCall  = "/peticion_piso"
	PathCabinCall  = "/peticion_cabina"
	PathEmergency  = "/peticion_emergencia"
)

// DispatcherHint is the fixed PSK identity hint the dispatcher advertises
// during the DTLS handshake (spec §6 allows either string; this repo picks
// one and stays consistent with it on both tiers).
const DispatcherHint = "ElevatorCentralServer"

// GatewayIdentityPrefix is the prefix the dispatcher accepts for any
// gateway-presented PSK identity.
const GatewayIdentityPrefix = "Gateway_Client_"

// Status codes from spec §6, expressed as go-coap response codes.
const (
	CodeSuccess           = codes.Content    // 2.05
	CodeValidationError   = codes.BadRequest // 4.00
	CodeUnauthorized      = codes.Unauthorized // 4.01
	CodeUnsupportedMedia  = codes.UnsupportedMediaType // 4.15
	CodeServiceExhausted  = codes.ServiceUnavailable // 5.03
	CodeInternal          = codes.InternalServerError // 5.00
)

// ContentFormatJSON is the CoAP content-format option value for
// application/json, used by the dispatcher's content-format check on
// incoming requests.
const ContentFormatJSON = 50
