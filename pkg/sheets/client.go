package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"order_manager/internal/models"
)

// The ledger keeps a fixed ten-column layout, A through J.
var headerRow = []interface{}{
	"ID Đơn hàng",
	"Thời gian đặt",
	"Tên khách hàng",
	"Số điện thoại",
	"Địa chỉ giao hàng",
	"Thời gian giao",
	"Danh sách món",
	"Số lượng món",
	"Tổng tiền",
	"Trạng thái",
}

var statusLabels = map[models.OrderStatus]string{
	models.OrderPending:    "Chờ xác nhận",
	models.OrderConfirmed:  "Đã xác nhận",
	models.OrderPreparing:  "Đang chuẩn bị",
	models.OrderDelivering: "Đang giao hàng",
	models.OrderCompleted:  "Hoàn thành",
	models.OrderCancelled:  "Đã hủy",
}

// StatusLabel translates a status to its display label. Unknown
// statuses pass through unchanged.
func StatusLabel(status models.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// Timestamps are stored canonically in UTC and rendered to Vietnam
// civil time only at this boundary.
var ledgerLocation *time.Location

func init() {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("UTC+7", 7*60*60)
	}
	ledgerLocation = loc
}

func formatLedgerTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(ledgerLocation).Format("02/01/2006, 15:04:05")
}

func itemSummary(items models.OrderItems) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

// spreadsheetAPI is the slice of the Sheets API the client needs. The
// id lookup is a full-range scan; a backing store with real indexing
// can replace this without touching the mirror logic.
type spreadsheetAPI interface {
	ReadRange(ctx context.Context, rng string) ([][]interface{}, error)
	AppendRow(ctx context.Context, rng string, row []interface{}) error
	UpdateRange(ctx context.Context, rng string, values [][]interface{}) error
	AddSheet(ctx context.Context, title string) error
}

type googleAPI struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

func (g *googleAPI) ReadRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleAPI) AppendRow(ctx context.Context, rng string, row []interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (g *googleAPI) UpdateRange(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheetsapi.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (g *googleAPI) AddSheet(ctx context.Context, title string) error {
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	return err
}

// Client mirrors order events into a Google Sheets ledger. Every
// failure is logged and swallowed; callers only see a success flag.
type Client struct {
	api       spreadsheetAPI
	sheetName string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(ctx context.Context, spreadsheetID, sheetName, serviceAccountJSON string, logger *zap.Logger) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(serviceAccountJSON), sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	svc, err := sheetsapi.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		api:       &googleAPI{svc: svc, spreadsheetID: spreadsheetID},
		sheetName: sheetName,
		timeout:   30 * time.Second,
		logger:    logger,
	}, nil
}

func (c *Client) rangeRef(ref string) string {
	return fmt.Sprintf("'%s'!%s", c.sheetName, ref)
}

// ensureSheet probes the sheet and bootstraps it with a header row when
// the probe fails.
func (c *Client) ensureSheet(ctx context.Context) error {
	if _, err := c.api.ReadRange(ctx, c.rangeRef("A1")); err == nil {
		return nil
	}

	if err := c.api.AddSheet(ctx, c.sheetName); err != nil {
		return err
	}
	return c.api.UpdateRange(ctx, c.rangeRef("A1:J1"), [][]interface{}{headerRow})
}

// MirrorCreate appends the order as a ledger row.
func (c *Client) MirrorCreate(order *models.Order) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.ensureSheet(ctx); err != nil {
		c.logger.Warn("failed to prepare ledger sheet", zap.Error(err))
		return false
	}

	row := []interface{}{
		order.ID,
		formatLedgerTime(order.CreatedAt),
		order.CustomerName,
		order.CustomerPhone,
		order.DeliveryAddress,
		order.DeliveryTime,
		itemSummary(order.Items),
		len(order.Items),
		order.Total,
		StatusLabel(order.Status),
	}

	if err := c.api.AppendRow(ctx, c.rangeRef("A:J"), row); err != nil {
		c.logger.Warn("failed to append order to ledger",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return false
	}

	c.logger.Info("order mirrored to ledger", zap.Uint("order_id", order.ID))
	return true
}

// MirrorStatusChange scans the ledger for the order's row and rewrites
// only the status column. A missing row is a no-op: the mirror may lag
// the primary store.
func (c *Client) MirrorStatusChange(orderID uint, status models.OrderStatus) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	values, err := c.api.ReadRange(ctx, c.rangeRef("A:J"))
	if err != nil {
		c.logger.Warn("failed to read ledger",
			zap.Uint("order_id", orderID), zap.Error(err))
		return false
	}
	if len(values) < 2 {
		return false
	}

	want := strconv.FormatUint(uint64(orderID), 10)
	rowNumber := -1
	for i := 1; i < len(values); i++ {
		if len(values[i]) == 0 {
			continue
		}
		if fmt.Sprint(values[i][0]) == want {
			rowNumber = i + 1 // A1 notation is 1-based
			break
		}
	}
	if rowNumber == -1 {
		c.logger.Warn("order not present in ledger, skipping status update",
			zap.Uint("order_id", orderID))
		return false
	}

	rng := c.rangeRef(fmt.Sprintf("J%d", rowNumber))
	if err := c.api.UpdateRange(ctx, rng, [][]interface{}{{StatusLabel(status)}}); err != nil {
		c.logger.Warn("failed to update ledger status",
			zap.Uint("order_id", orderID), zap.Error(err))
		return false
	}

	c.logger.Info("ledger status updated",
		zap.Uint("order_id", orderID), zap.String("status", string(status)))
	return true
}
