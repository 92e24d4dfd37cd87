package publication

import (
	"fmt"
	"strings"
)

// Status is the current publication state of a design project.
type Status string

const (
	Draft              Status = "draft"
	PendingReview      Status = "pending_review"
	RevisionRequested  Status = "revision_requested"
	Approved           Status = "approved"
	Rejected           Status = "rejected"
	Sampling           Status = "sampling"
	SampleReady        Status = "sample_ready"
	CostingReady       Status = "costing_ready"
	PreProduction      Status = "pre_production"
	MarketplacePending Status = "marketplace_pending"
	ListingPreview     Status = "listing_preview"
	Published          Status = "published"
)

// ParseStatus validates an external status identifier.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusTable[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Stage groups statuses for progress display.
type Stage string

const (
	StageSubmission  Stage = "submission"
	StageReview      Stage = "review"
	StageProduction  Stage = "production"
	StageMarketplace Stage = "marketplace"
)

// Action is an admin operation; each maps to exactly one target status.
type Action string

const (
	ActionApprove             Action = "approve"
	ActionRequestRevision     Action = "request_revision"
	ActionReject              Action = "reject"
	ActionStartSampling       Action = "start_sampling"
	ActionMarkSampleReady     Action = "mark_sample_ready"
	ActionCompleteCosting     Action = "complete_costing"
	ActionStartProduction     Action = "start_production"
	ActionSendToMarketplace   Action = "send_to_marketplace"
	ActionPrepareListing      Action = "prepare_listing"
	ActionPublish             Action = "publish"
	ActionReturnToMarketplace Action = "return_to_marketplace"
)

var actionTargets = map[Action]Status{
	ActionApprove:             Approved,
	ActionRequestRevision:     RevisionRequested,
	ActionReject:              Rejected,
	ActionStartSampling:       Sampling,
	ActionMarkSampleReady:     SampleReady,
	ActionCompleteCosting:     CostingReady,
	ActionStartProduction:     PreProduction,
	ActionSendToMarketplace:   MarketplacePending,
	ActionPrepareListing:      ListingPreview,
	ActionPublish:             Published,
	ActionReturnToMarketplace: MarketplacePending,
}

// StatusInfo is the per-status metadata collaborators read instead of
// hard-coding labels or permissions.
type StatusInfo struct {
	Status           Status   `json:"status"`
	Label            string   `json:"label"`
	Description      string   `json:"description"`
	Stage            Stage    `json:"stage"`
	Order            int      `json:"order"`
	DesignerEditable bool     `json:"designer_editable"`
	AdminActions     []Action `json:"admin_actions"`
}

// Table order is the display order.
var statusList = [...]StatusInfo{
	{Draft, "Draft", "Design is being prepared and has not been submitted.", StageSubmission, 0, true, nil},
	{PendingReview, "Pending Review", "Submitted and waiting for a reviewer.", StageReview, 1,
		false, []Action{ActionApprove, ActionRequestRevision, ActionReject}},
	{RevisionRequested, "Revision Requested", "Reviewer asked for changes before approval.", StageSubmission, 2, true, nil},
	{Approved, "Approved", "Accepted for production.", StageReview, 3, false, []Action{ActionStartSampling}},
	{Sampling, "Sampling", "A physical sample is being produced.", StageProduction, 4,
		false, []Action{ActionMarkSampleReady, ActionReject}},
	{SampleReady, "Sample Ready", "Sample finished and awaiting costing.", StageProduction, 5, false, []Action{ActionCompleteCosting}},
	{CostingReady, "Costing Ready", "Production cost has been calculated.", StageProduction, 6, false, []Action{ActionStartProduction}},
	{PreProduction, "Pre-Production", "Preparing the production run.", StageProduction, 7, false, []Action{ActionSendToMarketplace}},
	{MarketplacePending, "Marketplace Pending", "Waiting for a marketplace listing.", StageMarketplace, 8, false, []Action{ActionPrepareListing}},
	{ListingPreview, "Listing Preview", "Listing drafted and awaiting final sign-off.", StageMarketplace, 9,
		false, []Action{ActionPublish, ActionReturnToMarketplace}},
	{Published, "Published", "Live on the marketplace.", StageMarketplace, 10, false, nil},
	{Rejected, "Rejected", "Not accepted; the designer may rework it as a new draft.", StageReview, -1, true, nil},
}

var statusTable = func() map[Status]StatusInfo {
	m := make(map[Status]StatusInfo, len(statusList))
	for _, info := range statusList {
		m[info.Status] = info
	}
	return m
}()

// Allowed successors. Nothing leaves published.
var transitionTable = map[Status][]Status{
	Draft:              {PendingReview},
	PendingReview:      {Approved, RevisionRequested, Rejected},
	RevisionRequested:  {PendingReview},
	Approved:           {Sampling},
	Sampling:           {SampleReady, Rejected},
	SampleReady:        {CostingReady},
	CostingReady:       {PreProduction},
	PreProduction:      {MarketplacePending},
	MarketplacePending: {ListingPreview},
	ListingPreview:     {Published, MarketplacePending},
	Rejected:           {Draft},
	Published:          nil,
}
