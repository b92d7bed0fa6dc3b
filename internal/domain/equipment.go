package domain

import "time"

// Equipment is an inventory item tracked by the IT department.
type Equipment struct {
	ID            string
	Category      string
	AssetTag      string
	Hostname      string
	Specification string
	Department    string
	Sector        string
	Location      string
	IP            string
	MAC           string
	Subnet        string
	Gateway       string
	DNS           string
	SerialNumber  string
	Notes         string
	RegisteredAt  time.Time
}
