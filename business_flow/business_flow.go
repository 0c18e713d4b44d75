// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/utils"
)

// ClientMetadata holds client information recorded with login attempts and security events
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) details() map[string]string {
	if cm == nil {
		return map[string]string{}
	}
	d := map[string]string{"ip_address": cm.IPAddress, "user_agent": cm.UserAgent}
	if cm.RequestID != "" {
		d["request_id"] = cm.RequestID
	}
	return d
}

// filterFromParams converts "all"/empty filter params to a PersonnelFilter
func filterFromParams(query, project, department, position string) models.PersonnelFilter {
	var f models.PersonnelFilter
	if query != "" {
		f.Query = &query
	}
	if utils.FilterActive(project) {
		f.Project = &project
	}
	if utils.FilterActive(department) {
		f.Department = &department
	}
	if utils.FilterActive(position) {
		f.Position = &position
	}
	return f
}
