package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wabackend/internal/model"
	"wabackend/internal/repository"
	"wabackend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for Request validation
type CreateOrderRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Note          string `json:"note"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELED"`
}

type UpsertOrderMessageRequest struct {
	Stage string `json:"stage" binding:"required,oneof=CREATED COMPLETED CANCELED"`
	Body  string `json:"body" binding:"required"`
}

// OrderService owns the order lifecycle for CS accounts: creation with a
// generated code, the PENDING -> COMPLETED/CANCELED transitions, and the
// stage notification texts.
type OrderService interface {
	CreateOrder(ctx context.Context, customerServiceID uuid.UUID, req CreateOrderRequest) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, customerServiceID, orderID uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error)
	GetOrder(ctx context.Context, customerServiceID, orderID uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error)

	ListOrderMessages(ctx context.Context, customerServiceID uuid.UUID) ([]model.OrderMessage, error)
	UpsertOrderMessage(ctx context.Context, customerServiceID uuid.UUID, req UpsertOrderMessageRequest) (*model.OrderMessage, error)
	RenderStageMessage(ctx context.Context, customerServiceID uuid.UUID, order *model.Order, stage string) (string, error)
}

type orderService struct {
	repo      repository.OrderRepository
	csRepo    repository.CustomerServiceRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
}

// NewOrderService returns a new instance of OrderService
func NewOrderService(
	repo repository.OrderRepository,
	csRepo repository.CustomerServiceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) OrderService {
	return &orderService{repo: repo, csRepo: csRepo, auditRepo: auditRepo, txManager: txManager, hub: hub}
}

// codeRetries bounds how often a create is retried when the generated
// sequence number collides with an existing row.
const codeRetries = 3

// generateOrderCode produces codes like ORD-20250115-00001, resetting the
// sequence daily. attempt shifts the sequence forward on collision retries.
func (s *orderService) generateOrderCode(ctx context.Context, attempt int) (string, error) {
	prefix := fmt.Sprintf("ORD-%s-", time.Now().Format("20060102"))
	count, err := s.repo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1+int64(attempt)), nil
}

func auditDetails(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (s *orderService) CreateOrder(ctx context.Context, customerServiceID uuid.UUID, req CreateOrderRequest) (*model.Order, error) {
	cs, err := s.csRepo.GetByID(ctx, customerServiceID)
	if err != nil {
		return nil, errors.New("customer service account not found")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		return nil, errors.New("invalid amount")
	}

	var order *model.Order
	for attempt := 0; ; attempt++ {
		err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			code, err := s.generateOrderCode(txCtx, attempt)
			if err != nil {
				return err
			}

			order = &model.Order{
				OrderCode:         code,
				CustomerServiceID: cs.ID,
				CustomerName:      req.CustomerName,
				CustomerPhone:     req.CustomerPhone,
				Amount:            amount,
				Status:            model.OrderStatusPending,
				Note:              req.Note,
			}
			if err := s.repo.Create(txCtx, order); err != nil {
				return err
			}

			return s.auditRepo.Log(txCtx, &model.AuditLog{
				UserID:     &cs.UserID,
				Action:     model.ActionCreateOrder,
				EntityID:   order.ID.String(),
				EntityName: order.OrderCode,
				Details: auditDetails(map[string]interface{}{
					"customer_service_id": cs.ID,
					"customer_name":       req.CustomerName,
					"amount":              amount.String(),
				}),
			})
		})
		if err == nil {
			break
		}
		// Concurrent creates can race the count to the same sequence number;
		// the unique index catches it and the next attempt shifts forward.
		if attempt+1 < codeRetries && repository.IsDuplicateKey(err) {
			continue
		}
		return nil, err
	}

	s.hub.BroadcastEvent(websocket.Event{
		Type:              websocket.EventOrderCreated,
		OrderID:           order.ID.String(),
		OrderCode:         order.OrderCode,
		CustomerServiceID: cs.ID.String(),
		Status:            order.Status,
	})

	return order, nil
}

// UpdateOrderStatus moves a pending order to a terminal state. COMPLETED and
// CANCELED are both final; no transition leaves them.
func (s *orderService) UpdateOrderStatus(ctx context.Context, customerServiceID, orderID uuid.UUID, req UpdateOrderStatusRequest) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.New("order not found")
	}
	if order.CustomerServiceID != customerServiceID {
		return nil, errors.New("order not found")
	}

	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("order is already %s and cannot change status", strings.ToLower(order.Status))
	}

	auditAction := model.ActionCompleteOrder
	eventType := websocket.EventOrderCompleted
	if req.Status == model.OrderStatusCanceled {
		auditAction = model.ActionCancelOrder
		eventType = websocket.EventOrderCanceled
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order.Status = req.Status
		if err := s.repo.Update(txCtx, order); err != nil {
			return err
		}

		var ownerID *uuid.UUID
		if order.CustomerService != nil {
			ownerID = &order.CustomerService.UserID
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     ownerID,
			Action:     auditAction,
			EntityID:   order.ID.String(),
			EntityName: order.OrderCode,
			Details:    auditDetails(map[string]interface{}{"status": req.Status}),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(websocket.Event{
		Type:              eventType,
		OrderID:           order.ID.String(),
		OrderCode:         order.OrderCode,
		CustomerServiceID: order.CustomerServiceID.String(),
		Status:            order.Status,
	})

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, customerServiceID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errors.New("order not found")
	}
	if order.CustomerServiceID != customerServiceID {
		return nil, errors.New("order not found")
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repo.List(ctx, filter)
}

func (s *orderService) ListOrderMessages(ctx context.Context, customerServiceID uuid.UUID) ([]model.OrderMessage, error) {
	return s.repo.ListMessages(ctx, customerServiceID)
}

// UpsertOrderMessage sets the notification text for one stage, replacing any
// previous text for the same stage.
func (s *orderService) UpsertOrderMessage(ctx context.Context, customerServiceID uuid.UUID, req UpsertOrderMessageRequest) (*model.OrderMessage, error) {
	message, err := s.repo.FindMessage(ctx, customerServiceID, req.Stage)
	if err != nil {
		message = &model.OrderMessage{
			CustomerServiceID: customerServiceID,
			Stage:             req.Stage,
		}
	}
	message.Body = req.Body

	if err := s.repo.SaveMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// RenderStageMessage fills the stage template's placeholders with order data.
// Supported placeholders: {{customer_name}}, {{order_code}}, {{amount}}.
func (s *orderService) RenderStageMessage(ctx context.Context, customerServiceID uuid.UUID, order *model.Order, stage string) (string, error) {
	message, err := s.repo.FindMessage(ctx, customerServiceID, stage)
	if err != nil {
		return "", errors.New("no message configured for this stage")
	}

	body := message.Body
	body = strings.ReplaceAll(body, "{{customer_name}}", order.CustomerName)
	body = strings.ReplaceAll(body, "{{order_code}}", order.OrderCode)
	body = strings.ReplaceAll(body, "{{amount}}", order.Amount.String())
	return body, nil
}
