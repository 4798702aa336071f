package shipping

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/bol"
	domainwms "github.com/freightdesk/backend/internal/domain/wms"
)

// DocumentRenderer turns a filled BOL field set into a PDF.
type DocumentRenderer interface {
	RenderBOL(ctx context.Context, doc *bol.Document) ([]byte, error)
}

// ArtifactStore keeps generated bundles outside the request.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (*bol.Artifact, error)
}

// OrderSubmitter sends one create-order request to the WMS. A non-nil error
// means nothing was sent.
type OrderSubmitter interface {
	Submit(ctx context.Context, req *domainwms.OrderRequest) (*domainwms.Result, error)
}
