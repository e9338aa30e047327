package report

import (
	"context"

	"go-hse/internal/features/layout"
)

// WidgetSource exposes a user's reports as dashboard widgets.
type WidgetSource struct {
	repo ReportRepository
}

func NewWidgetSource(repo ReportRepository) layout.CustomWidgetSource {
	return &WidgetSource{repo: repo}
}

func (w *WidgetSource) ListCustomWidgets(ctx context.Context, companyID, userID string) ([]layout.CustomWidget, error) {
	reports, err := w.repo.List(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	widgets := make([]layout.CustomWidget, 0, len(reports))
	for _, r := range reports {
		widgets = append(widgets, layout.CustomWidget{
			ID:    layout.CustomReportWidgetID(r.ID.Hex()),
			Label: r.Name,
		})
	}
	return widgets, nil
}
