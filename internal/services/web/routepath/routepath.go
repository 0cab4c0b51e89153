// Package routepath centralizes web route constants.
package routepath

// Public site.
const (
	Home          = "/"
	Book          = "/book"
	BookSuccess   = "/book/success"
	BookingInvite = "/book/{id}/calendar.ics"
	Login         = "/login"
	Signup        = "/signup"
	Logout        = "/logout"
)

// Client portal.
const (
	PortalPrefix   = "/portal/"
	Portal         = "/portal"
	PortalProgress = "/portal/progress"
	PortalSlots    = "/portal/slots"
	PortalBook     = "/portal/book"
	PortalCancel   = "/portal/sessions/{id}/cancel"
)

// Admin area.
const (
	AdminPrefix          = "/admin/"
	Admin                = "/admin"
	AdminRequestContact  = "/admin/requests/{id}/contact"
	AdminRequestClose    = "/admin/requests/{id}/close"
	AdminSessionComplete = "/admin/sessions/{id}/complete"
	AdminClient          = "/admin/clients/{id}"
	AdminSlotCreate      = "/admin/slots"
	AdminSlotDelete      = "/admin/slots/{id}/delete"
)

// JSON APIs.
const (
	APIChat         = "/api/chat"
	APIAvailability = "/api/availability"
	APIHealth       = "/api/health"
)
