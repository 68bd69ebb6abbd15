package types

import "strings"

// ResourceType is the kind of request issued by the rendering engine
type ResourceType string

const (
	ResourceMainFrame  ResourceType = "main_frame"
	ResourceSubFrame   ResourceType = "sub_frame"
	ResourceStylesheet ResourceType = "stylesheet"
	ResourceScript     ResourceType = "script"
	ResourceImage      ResourceType = "image"
	ResourceFont       ResourceType = "font"
	ResourceXHR        ResourceType = "xhr"
	ResourceMedia      ResourceType = "media"
	ResourceOther      ResourceType = "other"
)

// ParseResourceType maps a resource type name, defaulting to other
func ParseResourceType(s string) ResourceType {
	switch rt := ResourceType(strings.ToLower(strings.TrimSpace(s))); rt {
	case ResourceMainFrame, ResourceSubFrame, ResourceStylesheet, ResourceScript,
		ResourceImage, ResourceFont, ResourceXHR, ResourceMedia:
		return rt
	case "":
		return ResourceMainFrame
	default:
		return ResourceOther
	}
}

// IsAsset reports whether the type is a passive asset (stylesheet, font, image)
func (r ResourceType) IsAsset() bool {
	return r == ResourceStylesheet || r == ResourceFont || r == ResourceImage
}

// IsDocument reports whether the type is a top-level document
func (r ResourceType) IsDocument() bool {
	return r == ResourceMainFrame
}

// EvaluateRequest represents an onBeforeRequest call from the host
type EvaluateRequest struct {
	Partition    string `json:"partition" binding:"required"`
	URL          string `json:"url" binding:"required"`
	ResourceType string `json:"resource_type"`
	TabID        string `json:"tab_id,omitempty"`
}

// CreateTabRequest represents a tab-open request
type CreateTabRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// NavigateRequest represents a typed or clicked navigation
type NavigateRequest struct {
	Input string `json:"input" binding:"required"`
}

// CommitRequest represents a navigation-state-changed notification
type CommitRequest struct {
	URL string `json:"url" binding:"required"`
}

// ModeRequest represents a mode toggle request
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}
