package descriptor

import (
	"net/url"
	"strconv"

	"github.com/samber/lo"

	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
)

// Asset directories under FILE_UPLOADS_URL
const (
	DirPatientPhotos = "patient/photos"
	DirProfilePhotos = "profile-photos"
	DirServiceLogos  = "services"
	DirStoreLogo     = "store"
)

// ============================================================
// Lists
// ============================================================

var Patients = List[domain.Patient]{
	Entity:     "patients",
	Title:      "Patients",
	Path:       "/dashboard/patients/list",
	CreatePath: "/dashboard/patients/demographics",
	EditBase:   "/dashboard/patients/demographics",
	Endpoint:   "/patient",
	ListKey:    "patients",
	Search: []SearchField{
		{Key: "firstName", Label: "First Name"},
		{Key: "lastName", Label: "Last Name"},
		{Key: "controlNo", Label: "Control No."},
	},
	Columns: []Column[domain.Patient]{
		{Header: "Control No.", Cell: func(p domain.Patient) string { return p.ControlNo }},
		{Header: "Name", Cell: func(p domain.Patient) string { return p.FullName() }},
		{Header: "Email", Cell: func(p domain.Patient) string { return p.Email }},
		{Header: "Contact No.", Cell: func(p domain.Patient) string { return p.ContactNo }},
		{Header: "Birth Date", Cell: func(p domain.Patient) string { return p.BirthDate }},
	},
	ID: func(p domain.Patient) string { return domain.FormatID(p.ID) },
}

var SystemUsers = List[domain.User]{
	Entity:     "system-users",
	Title:      "System Users",
	Path:       "/dashboard/users/system-users/list",
	CreatePath: "/dashboard/users/system-users/create",
	EditBase:   "/dashboard/users/system-users",
	Endpoint:   "/user",
	ListKey:    "users",
	Search: []SearchField{
		{Key: "firstName", Label: "First Name"},
		{Key: "lastName", Label: "Last Name"},
		{Key: "email", Label: "Email"},
	},
	Filters: []Filter{{Key: "role", Label: "Roles", Options: OptionRoleKeys}},
	Columns: []Column[domain.User]{
		{Header: "Name", Cell: func(u domain.User) string { return u.FullName() }},
		{Header: "Email", Cell: func(u domain.User) string { return u.Email }},
		{Header: "Roles", Cell: func(u domain.User) string {
			return joinNonEmpty(", ", lo.Map(u.Roles, func(r domain.RoleRef, _ int) string { return r.Key })...)
		}},
	},
	ID: func(u domain.User) string { return domain.FormatID(u.ID) },
}

var Roles = List[domain.Role]{
	Entity:     "roles",
	Title:      "Roles",
	Path:       "/dashboard/users/roles/list",
	CreatePath: "/dashboard/users/roles/create",
	EditBase:   "/dashboard/users/roles",
	Endpoint:   "/role",
	ListKey:    "roles",
	Search:     []SearchField{{Key: "keyword", Label: "Keyword"}},
	Columns: []Column[domain.Role]{
		{Header: "Name", Cell: func(r domain.Role) string { return r.Name }},
		{Header: "Key", Cell: func(r domain.Role) string { return r.Key }},
		{Header: "Users", Cell: func(r domain.Role) string { return strconv.Itoa(r.UserCount) }},
	},
	ID: func(r domain.Role) string { return domain.FormatID(r.ID) },
}

var Services = List[domain.Service]{
	Entity:     "services",
	Title:      "Services",
	Path:       "/dashboard/services/list",
	CreatePath: "/dashboard/services/create",
	EditBase:   "/dashboard/services",
	Endpoint:   "/service",
	ListKey:    "services",
	Search:     []SearchField{{Key: "name", Label: "Name"}},
	Filters:    []Filter{{Key: "category", Label: "Category", Options: OptionServiceCategories}},
	Columns: []Column[domain.Service]{
		{Header: "Name", Cell: func(s domain.Service) string { return s.Name }},
		{Header: "Category", Cell: func(s domain.Service) string { return domain.ServiceCategoryName(s.Category) }},
		{Header: "Price", Cell: func(s domain.Service) string { return s.Price.String() }},
	},
	ID: func(s domain.Service) string { return domain.FormatID(s.ID) },
}

var DocumentTypes = List[domain.DocumentType]{
	Entity:     "document-types",
	Title:      "Document Types",
	Path:       "/dashboard/settings/document-types/list",
	CreatePath: "/dashboard/settings/document-types/create",
	EditBase:   "/dashboard/settings/document-types",
	Endpoint:   "/document-type",
	ListKey:    "documentTypes",
	Search:     []SearchField{{Key: "name", Label: "Name"}},
	Columns: []Column[domain.DocumentType]{
		{Header: "Name", Cell: func(d domain.DocumentType) string { return d.Name }},
		{Header: "File Types", Cell: func(d domain.DocumentType) string {
			return joinNonEmpty(", ", lo.Map(d.FileTypes, func(id string, _ int) string { return domain.FileTypeLabel(id) })...)
		}},
	},
	ID: func(d domain.DocumentType) string { return domain.FormatID(d.ID) },
}

// ============================================================
// Forms
// ============================================================

var addressFields = []form.Field{
	{Name: "address1", Label: "Address 1", Kind: form.KindText},
	{Name: "address2", Label: "Address 2", Kind: form.KindText},
	{Name: "address", Label: "Address", Kind: form.KindAddress},
}

var PatientDemographics = Form{
	Entity: "patient-demographics",
	Title:  "Demographics",
	Fields: []form.Field{
		{Name: "profilePhoto", Label: "Profile Photo", Kind: form.KindFile, AssetDir: DirPatientPhotos, Accept: "image/*"},
		{Name: "firstName", Label: "First Name", Kind: form.KindText, Required: true},
		{Name: "middleName", Label: "Middle Name", Kind: form.KindText},
		{Name: "lastName", Label: "Last Name", Kind: form.KindText, Required: true},
		{Name: "birthDate", Label: "Birth Date", Kind: form.KindDate},
		{Name: "email", Label: "Email", Kind: form.KindEmail},
		{Name: "contactNo", Label: "Contact No.", Kind: form.KindText},
	},
	CreatePath:     "/dashboard/patients/demographics",
	EditBase:       "/dashboard/patients/demographics",
	Back:           Patients.Landing(),
	CreateEndpoint: "/patient/demographics",
	Resource:       func(id string) string { return "/patient/" + url.PathEscape(id) + "/demographics" },
	ItemKey:        "patient",
	Success: func(url.Values, form.Mode) string {
		return "Successfully updated patient's demographics data."
	},
	Next: func(created form.Record) string {
		id := created.String("id")
		if id == "" {
			if rec, err := form.DecodeRecord(created["patient"]); err == nil {
				id = rec.String("id")
			}
		}
		if id == "" {
			return ""
		}
		return PatientAdditionalData.EditBase + "/" + url.PathEscape(id)
	},
}

var PatientAdditionalData = Form{
	Entity: "patient-additional-data",
	Title:  "Additional Data",
	Fields: lo.Flatten([][]form.Field{
		{
			{Name: "emergencyContactFirstName", Label: "Emergency Contact First Name", Kind: form.KindText},
			{Name: "emergencyContactMiddleName", Label: "Emergency Contact Middle Name", Kind: form.KindText},
			{Name: "emergencyContactLastName", Label: "Emergency Contact Last Name", Kind: form.KindText},
			{Name: "emergencyContactNo", Label: "Emergency Contact No.", Kind: form.KindText},
		},
		addressFields,
		{{Name: "postal", Label: "Postal / Zip", Kind: form.KindText, Source: "postalOrZip"}},
	}),
	EditBase: "/dashboard/patients/additional-data",
	Back:     Patients.Landing(),
	Resource: func(id string) string { return "/patient/" + url.PathEscape(id) + "/additional-data" },
	ItemKey:  "patient",
	Success: func(url.Values, form.Mode) string {
		return "Successfully updated patient's additional data."
	},
}

var SystemUser = Form{
	Entity: "system-user",
	Title:  "System User",
	Fields: []form.Field{
		{Name: "profilePhoto", Label: "Profile Photo", Kind: form.KindFile, AssetDir: DirProfilePhotos, Accept: "image/*"},
		{Name: "firstName", Label: "First Name", Kind: form.KindText, Required: true},
		{Name: "lastName", Label: "Last Name", Kind: form.KindText, Required: true},
		{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
		{Name: "roles", Label: "Roles", Kind: form.KindMultiSelect, Options: OptionRoleIDs, IndexedKey: "roles[%d][id]", Pluck: "id"},
		{Name: "password", Label: "Password", Kind: form.KindPassword, OmitEmpty: true},
		{Name: "confirmPassword", Label: "Confirm Password", Kind: form.KindPassword, OmitEmpty: true},
	},
	CreatePath:     SystemUsers.CreatePath,
	EditBase:       SystemUsers.EditBase,
	Back:           SystemUsers.Landing(),
	CreateEndpoint: SystemUsers.Endpoint,
	Resource:       SystemUsers.Resource,
	ItemKey:        "user",
	Success: func(v url.Values, mode form.Mode) string {
		return joinNonEmpty(" ", v.Get("firstName"), v.Get("lastName")) + " user is " + pastTense(mode) + "!"
	},
}

var Role = Form{
	Entity:         "role",
	Title:          "Role",
	Fields:         []form.Field{{Name: "name", Label: "Name", Kind: form.KindText, Required: true}},
	CreatePath:     Roles.CreatePath,
	EditBase:       Roles.EditBase,
	Back:           Roles.Landing(),
	CreateEndpoint: Roles.Endpoint,
	Resource:       Roles.Resource,
	ItemKey:        "role",
	Success: func(v url.Values, mode form.Mode) string {
		return v.Get("name") + " role is " + pastTense(mode) + "!"
	},
}

var Service = Form{
	Entity: "service",
	Title:  "Service",
	Fields: []form.Field{
		{Name: "logo", Label: "Logo", Kind: form.KindFile, AssetDir: DirServiceLogos, Accept: "image/*"},
		{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
		{Name: "category", Label: "Category", Kind: form.KindSelect, Options: OptionServiceCategories, Required: true},
		{Name: "description", Label: "Description", Kind: form.KindTextarea},
		{Name: "price", Label: "Price", Kind: form.KindNumber, Required: true},
	},
	CreatePath:     Services.CreatePath,
	EditBase:       Services.EditBase,
	Back:           Services.Landing(),
	CreateEndpoint: Services.Endpoint,
	Resource:       Services.Resource,
	ItemKey:        "service",
	Success: func(v url.Values, mode form.Mode) string {
		return v.Get("name") + " service is " + pastTense(mode) + "!"
	},
}

var DocumentType = Form{
	Entity: "document-type",
	Title:  "Document Type",
	Fields: []form.Field{
		{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
		{Name: "fileTypes", Label: "File Types", Kind: form.KindMultiSelect, Options: OptionFileTypes, Numeric: true},
	},
	CreatePath:     DocumentTypes.CreatePath,
	EditBase:       DocumentTypes.EditBase,
	Back:           DocumentTypes.Landing(),
	CreateEndpoint: DocumentTypes.Endpoint,
	Resource:       DocumentTypes.Resource,
	ItemKey:        "documentType",
	Success: func(v url.Values, mode form.Mode) string {
		return v.Get("name") + " is " + pastTense(mode) + "!"
	},
}

// StoreSettings edits the single store record; it has no create mode
var StoreSettings = Form{
	Entity: "store",
	Title:  "Health Service Details",
	Fields: lo.Flatten([][]form.Field{
		{
			{Name: "logo", Label: "Logo", Kind: form.KindFile, AssetDir: DirStoreLogo, Accept: "image/*"},
			{Name: "name", Label: "Name", Kind: form.KindText, Required: true},
			{Name: "contactNo", Label: "Contact No.", Kind: form.KindText},
			{Name: "email", Label: "Email", Kind: form.KindEmail},
		},
		addressFields,
	}),
	EditBase: "/dashboard/settings/health-service-details",
	Back:     "/dashboard/settings/health-service-details",
	Resource: func(string) string { return "/store" },
	ItemKey:  "store",
	Success:  func(url.Values, form.Mode) string { return "Store successfully updated." },
}

// Profile edits the signed-in user
var Profile = Form{
	Entity: "profile",
	Title:  "Profile",
	Fields: []form.Field{
		{Name: "profilePhoto", Label: "Profile Photo", Kind: form.KindFile, AssetDir: DirProfilePhotos, Accept: "image/*"},
		{Name: "firstName", Label: "First Name", Kind: form.KindText, Required: true},
		{Name: "lastName", Label: "Last Name", Kind: form.KindText, Required: true},
		{Name: "email", Label: "Email", Kind: form.KindEmail, Required: true},
	},
	EditBase: "/dashboard/profile",
	Back:     "/dashboard/profile",
	Resource: func(id string) string { return "/user/" + url.PathEscape(id) },
	Update:   func(string) string { return "/user/current" },
	ItemKey:  "user",
	Success:  func(url.Values, form.Mode) string { return "Profile successfully updated." },
}

// Password changes the signed-in user's password
var Password = Form{
	Entity: "password",
	Title:  "Security",
	Fields: []form.Field{
		{Name: "currentPassword", Label: "Current Password", Kind: form.KindPassword, Required: true},
		{Name: "password", Label: "New Password", Kind: form.KindPassword, Required: true},
		{Name: "confirmPassword", Label: "Confirm Password", Kind: form.KindPassword, Required: true},
	},
	EditBase: "/dashboard/profile/security",
	Back:     "/dashboard/profile/security",
	Update:   func(string) string { return "/user/current/password" },
	Success:  func(url.Values, form.Mode) string { return "Profile password successfully updated." },

	Invalid:             "Unable to reset password.",
	UnauthorizedField:   "currentPassword",
	UnauthorizedMessage: "Invalid current password",
}

func pastTense(mode form.Mode) string {
	if mode == form.ModeCreate {
		return "created"
	}
	return "updated"
}
