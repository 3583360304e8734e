package uax

import "encoding/hex"

// ServiceType identifies the request/response pair carried by a Message.
// Values are the numeric node ids of the binary encodings of the requests.
type ServiceType uint16

const (
	ServiceTypeUnknown           = ServiceType(0)
	ServiceTypeOpenSecureChannel = ServiceType(446)
	ServiceTypeCancel            = ServiceType(479)
	ServiceTypeAddNodes          = ServiceType(488)
	ServiceTypeBrowse            = ServiceType(527)
	ServiceTypeBrowseNext        = ServiceType(533)
	ServiceTypeRead              = ServiceType(631)
	ServiceTypeWrite             = ServiceType(673)
	ServiceTypeCall              = ServiceType(712)
)

func (t ServiceType) String() string {
	switch t {
	case ServiceTypeOpenSecureChannel:
		return "OpenSecureChannel"
	case ServiceTypeCancel:
		return "Cancel"
	case ServiceTypeAddNodes:
		return "AddNodes"
	case ServiceTypeBrowse:
		return "Browse"
	case ServiceTypeBrowseNext:
		return "BrowseNext"
	case ServiceTypeRead:
		return "Read"
	case ServiceTypeWrite:
		return "Write"
	case ServiceTypeCall:
		return "Call"
	}

	return "x" + hex.EncodeToString([]byte{byte(t >> 8), byte(t)})
}
