package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campuseats/campuseats/internal/handler/http/mocks"
	"github.com/campuseats/campuseats/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testRequestCtx attaches the auth payload and a chi route context with the
// id URL param, the way the router does in production.
func testRequestCtx(req *http.Request, token *models.TokenPayload, id string) context.Context {
	ctx := context.WithValue(req.Context(), authPayloadKey, token)
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return ctx
}

func testOrder() *models.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &models.Order{
		ID:            "ord-1",
		Number:        "ORD-1720000000000-A1B2C",
		StudentID:     "stu-1",
		RestaurantID:  "rest-1",
		Status:        models.OrderStatusPlaced,
		PaymentStatus: models.PaymentStatusPending,
		Items: []models.OrderItem{
			{MenuItemID: "item-1", Name: "Margherita Pizza", Price: decimal.NewFromInt(100), Quantity: 2},
			{MenuItemID: "item-2", Name: "Garlic Bread", Price: decimal.NewFromInt(50), Quantity: 1},
		},
		Subtotal:        decimal.NewFromInt(250),
		TotalAmount:     decimal.NewFromInt(250),
		DeliveryAddress: "Hostel Block A",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	validBody := `{"restaurant_id":"rest-1","items":[{"menu_item_id":"item-1","quantity":2}],"delivery_address":"Hostel Block A"}`

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockOrderService
		wantStatusCode int
	}{
		{
			name:  "valid_request_return_201",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			body:  validBody,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(testOrder(), nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:  "malformed_body_return_400",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			body:  "{not json",
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:  "validation_error_return_400",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			body:  validBody,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(nil, models.ValidationError{Field: "items", Message: "unknown menu item"}).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unauthorized_request_return_401",
			body: validBody,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:  "unknown_restaurant_return_404",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			body:  validBody,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:  "internal_error_return_500",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			body:  validBody,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}

			w := httptest.NewRecorder()
			st := tt.setup(t)
			ctx := testRequestCtx(req, tt.token, "")

			handler := NewOrderHandler(st)
			h := handler.CreateOrder()
			h(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockOrderService
		wantStatusCode int
	}{
		{
			name:  "valid_transition_return_200",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				order := testOrder()
				order.Status = models.OrderStatusPreparing

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), "ord-1", "preparing", gomock.Any()).Return(order, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:  "empty_status_return_400",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unauthorized_request_return_401",
			body: `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:  "foreign_order_return_403",
			token: &models.TokenPayload{UserID: "rest-user-2", Role: models.RoleRestaurant},
			body:  `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: order belongs to another restaurant", models.ErrPermissionDenied)).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:  "unknown_order_return_404",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:  "invalid_transition_return_409",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{"status":"delivered"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: placed -> delivered", models.ErrInvalidTransition)).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:  "lost_race_return_409",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrConflictData).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:  "internal_error_return_500",
			token: &models.TokenPayload{UserID: "rest-user-1", Role: models.RoleRestaurant},
			body:  `{"status":"preparing"}`,
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, "/api/orders/ord-1/status", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}

			w := httptest.NewRecorder()
			st := tt.setup(t)
			ctx := testRequestCtx(req, tt.token, "ord-1")

			handler := NewOrderHandler(st)
			h := handler.UpdateOrderStatus()
			h(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestOrderHandler_ListStudentOrders(t *testing.T) {
	order := testOrder()

	tests := []struct {
		name           string
		token          *models.TokenPayload
		setup          func(t *testing.T) *mocks.MockOrderService
		wantStatusCode int
		wantBody       []orderResponse
	}{
		{
			name:  "valid_request_return_200",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().ListStudentOrders(gomock.Any(), "stu-1").
					Return([]models.Order{*order}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody:       []orderResponse{toOrderResponse(order)},
		},
		{
			name:  "empty_list_return_200",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().ListStudentOrders(gomock.Any(), gomock.Any()).
					Return(nil, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody:       []orderResponse{},
		},
		{
			name: "unauthorized_request_return_401",
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().ListStudentOrders(gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:  "internal_error_return_500",
			token: &models.TokenPayload{UserID: "stu-1", Role: models.RoleStudent},
			setup: func(t *testing.T) *mocks.MockOrderService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockOrderService(ctrl)
				svcMock.EXPECT().ListStudentOrders(gomock.Any(), gomock.Any()).
					Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/api/orders/student/stu-1", nil)
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}

			w := httptest.NewRecorder()
			st := tt.setup(t)
			ctx := testRequestCtx(req, tt.token, "stu-1")

			handler := NewOrderHandler(st)
			h := handler.ListStudentOrders()
			h(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			resBody, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			if tt.wantBody != nil {
				var got []orderResponse
				err = json.Unmarshal(resBody, &got)
				require.NoError(t, err)

				if diff := cmp.Diff(tt.wantBody, got); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
