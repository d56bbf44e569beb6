package domain

type VehicleClass string

const (
	VehicleCar        VehicleClass = "car"
	VehicleVan        VehicleClass = "van"
	VehicleTruck      VehicleClass = "truck"
	VehicleMotorcycle VehicleClass = "motorcycle"
)

func (c VehicleClass) Valid() bool {
	switch c {
	case VehicleCar, VehicleVan, VehicleTruck, VehicleMotorcycle:
		return true
	}
	return false
}

// Vehicle is identified by its license plate. The facility tracks at most one
// non-terminal ticket per license; ActiveTicketNo is zero when none exists.
type Vehicle struct {
	License        string       `json:"license"`
	Class          VehicleClass `json:"class"`
	ActiveTicketNo int          `json:"active_ticket_no,omitempty"`
}
