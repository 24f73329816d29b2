package domain

import "strings"

// ResidentialStatus values accepted on the applicant form.
const (
	StatusResident        = "Resident"
	StatusNonResident     = "Non-Resident"
	StatusForeignNational = "Foreign National of Indian Origin"
)

// Applicant holds one applicant slot of the form. The organization
// block is only meaningful for the third slot, where a company/firm/HUF
// may apply instead of (or alongside) a person.
type Applicant struct {
	Title      string `json:"title"`
	Name       string `json:"name"`
	Relation   string `json:"relation"`
	RelativeOf string `json:"sonWifeDaughterOf"`

	Nationality string `json:"nationality"`
	Age         string `json:"age"`
	DOB         string `json:"dob"`
	Profession  string `json:"profession"`
	Aadhaar     string `json:"aadhaar"`

	ResidentialStatus string `json:"residentialStatus"`

	PAN    string `json:"pan"`
	ITWard string `json:"itWard"`

	CorrespondenceAddress string `json:"correspondenceAddress"`

	TelNo string `json:"telNo"`
	Phone string `json:"phone"`
	Email string `json:"email"`

	// Inline data URIs, supplied by the form.
	Photograph string `json:"photograph"`
	Signature  string `json:"signature"`

	Organization Organization `json:"organization"`
}

// Organization is the alternate identity block for the third slot.
type Organization struct {
	Name                     string `json:"companyName"`
	RegOfficeLine1           string `json:"regOfficeLine1"`
	RegOfficeLine2           string `json:"regOfficeLine2"`
	AuthorizedSignatoryLine1 string `json:"authorizedSignatoryLine1"`
	AuthorizedSignatoryLine2 string `json:"authorizedSignatoryLine2"`
	BoardResolutionDate      string `json:"boardResolutionDate"`
	PANOrTIN                 string `json:"companyPanOrTin"`
	TelNo                    string `json:"companyTelNo"`
	MobileNo                 string `json:"companyMobileNo"`
	Email                    string `json:"companyEmail"`
	FaxNo                    string `json:"companyFaxNo"`
}

// Applicant slot numbers are fixed positions on the printed form.
const (
	SlotFirst  = 1
	SlotSecond = 2
	SlotThird  = 3
)

// HasName reports whether the applicant carries a usable personal name.
func (a Applicant) HasName() bool {
	return strings.TrimSpace(a.Name) != ""
}

// HasOrganization reports whether any organization field is filled in.
func (o Organization) HasData() bool {
	fields := []string{
		o.Name,
		o.RegOfficeLine1,
		o.RegOfficeLine2,
		o.AuthorizedSignatoryLine1,
		o.AuthorizedSignatoryLine2,
		o.BoardResolutionDate,
		o.PANOrTIN,
		o.TelNo,
		o.MobileNo,
		o.Email,
		o.FaxNo,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// HasData is the single inclusion predicate used by the templater, the
// assembler and the admin listing. Slots 1 and 2 require a personal
// name; slot 3 is included when either a name or any organization
// field is present.
func (a Applicant) HasData(slot int) bool {
	if a.HasName() {
		return true
	}
	if slot == SlotThird {
		return a.Organization.HasData()
	}
	return false
}

// HasSignature reports whether the applicant supplied a signature image.
func (a Applicant) HasSignature() bool {
	return strings.TrimSpace(a.Signature) != ""
}
