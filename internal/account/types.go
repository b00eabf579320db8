package account

import "fmt"

// Device is a hardware device registered with the account.
type Device struct {
	Name             string   `json:"name"`
	Model            string   `json:"model"`
	ModelDisplayName string   `json:"modelDisplayName"`
	ModelLargePhotoURL string `json:"modelLargePhotoURL2x,omitempty"`
	OSVersion        string   `json:"osVersion"`
	SerialNumber     string   `json:"serialNumber"`
	UDID             string   `json:"udid"`
	IMEI             string   `json:"imei,omitempty"`
	PaymentMethods   []string `json:"paymentMethods,omitempty"`
}

// FamilyMember is one member of the account's family group.
type FamilyMember struct {
	DSID                    string `json:"dsid"`
	AppleID                 string `json:"appleId"`
	FamilyID                string `json:"familyId"`
	FullName                string `json:"fullName"`
	FirstName               string `json:"firstName,omitempty"`
	LastName                string `json:"lastName,omitempty"`
	AgeClassification       string `json:"ageClassification"`
	OriginalInvitationEmail string `json:"originalInvitationEmail,omitempty"`
	HasScreenTimeEnabled    bool   `json:"hasScreenTimeEnabled,omitempty"`
}

// MediaUsage is the storage consumed by one media category.
type MediaUsage struct {
	Key          string `json:"mediaKey"`
	DisplayLabel string `json:"displayLabel"`
	UsageInBytes int64  `json:"usageInBytes"`
}

// StorageUsage describes the account's iCloud storage consumption.
type StorageUsage struct {
	TotalStorageInBytes int64        `json:"totalStorageInBytes"`
	UsedStorageInBytes  int64        `json:"usedStorageInBytes"`
	CommerceStorageInBytes int64     `json:"commerceStorageInBytes,omitempty"`
	Media               []MediaUsage `json:"-"`
}

// AvailableStorageInBytes returns the remaining free storage.
func (s *StorageUsage) AvailableStorageInBytes() int64 {
	return s.TotalStorageInBytes - s.UsedStorageInBytes
}

// UsedPercent returns the used share of total storage, 0 when the total
// is unknown.
func (s *StorageUsage) UsedPercent() float64 {
	if s.TotalStorageInBytes == 0 {
		return 0
	}
	return float64(s.UsedStorageInBytes) / float64(s.TotalStorageInBytes) * 100
}

// String implements fmt.Stringer
func (s *StorageUsage) String() string {
	return fmt.Sprintf("%.1f%% of %.2f GB used",
		s.UsedPercent(),
		float64(s.TotalStorageInBytes)/(1024*1024*1024))
}
