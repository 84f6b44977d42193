package http

import (
	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// componentView renders a component with its specs map
func componentView(detail *entities.ComponentDetail) map[string]any {
	view := map[string]any{
		"id":       detail.ID,
		"category": detail.Category,
		"name":     detail.Name,
		"brand":    detail.Brand,
		"price":    detail.Price,
		"stock":    detail.Stock,
		"status":   detail.Status,
	}
	if detail.ImageURL != "" {
		view["image_url"] = detail.ImageURL
	}
	if detail.Specs != nil {
		view["specs"] = detail.Specs.SpecMap()
	} else {
		view["specs"] = map[string]any{}
	}
	return view
}

// expandedBuildView renders a workspace expansion keyed by category.
// Placeholder slots render as null so clients can show the empty slot.
func expandedBuildView(expanded entities.ExpandedBuild) map[string]any {
	view := make(map[string]any, len(expanded))
	for slug, part := range expanded {
		if part.Placeholder() {
			view[string(slug)] = nil
			continue
		}
		view[string(slug)] = componentView(part.Detail)
	}
	return view
}

func summaryView(summary *entities.BuildSummary) map[string]any {
	return map[string]any{
		"total_price":   summary.TotalPrice,
		"power_usage":   summary.PowerUsage,
		"compatibility": summary.Compatibility,
	}
}

func savedBuildView(build *entities.SavedBuild) map[string]any {
	return map[string]any{
		"id":            build.ID,
		"name":          build.Name,
		"components":    build.Components,
		"total_price":   build.TotalPrice,
		"power_usage":   build.PowerUsage,
		"compatibility": build.Compatibility,
		"image":         build.Image,
		"created_at":    build.CreatedAt,
		"updated_at":    build.UpdatedAt,
	}
}

func cartItemView(item *entities.CartItem) map[string]any {
	view := map[string]any{
		"id":       item.ID,
		"category": item.Category,
		"quantity": item.Quantity,
	}
	if item.IsBundle() {
		view["build_id"] = item.BuildID
		view["build_name"] = item.BuildName
		view["build_total_price"] = item.BuildTotalPrice
		view["bundle_item_count"] = item.BundleItemCount
	} else {
		view["component_id"] = item.ComponentID
		view["price"] = item.Price
	}
	view["line_total"] = item.LineTotal()
	return view
}

func cartViewJSON(view *cart.CartView) map[string]any {
	items := make([]map[string]any, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, cartItemView(item))
	}
	return map[string]any{
		"items":      items,
		"total":      view.Total,
		"item_count": view.ItemCount,
	}
}

func orderView(order *entities.Order) map[string]any {
	view := map[string]any{
		"id":             order.ID,
		"total":          order.Total,
		"payment_method": order.PaymentMethod,
		"status":         order.Status,
		"created_at":     order.CreatedAt,
		"updated_at":     order.UpdatedAt,
	}
	if order.Notes != "" {
		view["notes"] = order.Notes
	}
	if order.PaidAt != nil {
		view["paid_at"] = order.PaidAt
	}
	if order.ShippedAt != nil {
		view["shipped_at"] = order.ShippedAt
	}
	if order.CompletedAt != nil {
		view["completed_at"] = order.CompletedAt
	}
	if order.CancelledAt != nil {
		view["cancelled_at"] = order.CancelledAt
	}
	if order.RefundedAt != nil {
		view["refunded_at"] = order.RefundedAt
	}
	return view
}

func orderItemView(item *entities.OrderItem) map[string]any {
	view := map[string]any{
		"id":         item.ID,
		"category":   item.Category,
		"quantity":   item.Quantity,
		"price_each": item.PriceEach,
		// Snapshot fields are preferred over live joins so history
		// survives catalog edits.
		"component_name":     item.ComponentName,
		"component_category": item.ComponentCategory,
	}
	if item.ComponentImage != "" {
		view["component_image"] = item.ComponentImage
	}
	if item.ComponentID != uuid.Nil {
		view["component_id"] = item.ComponentID
	}
	if item.BuildID != uuid.Nil {
		view["build_id"] = item.BuildID
	}
	return view
}

// workspaceView renders the workspace with its expansion and summary
func workspaceView(ws *entities.Workspace, expanded entities.ExpandedBuild, summary *entities.BuildSummary) map[string]any {
	view := map[string]any{
		"build":   expandedBuildView(expanded),
		"summary": summaryView(summary),
	}
	if ws.SourceBuildID != nil {
		view["source_build_id"] = ws.SourceBuildID
	}
	return view
}
