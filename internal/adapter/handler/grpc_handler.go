package handler

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/seckill/internal/adapter/handler/pb"
	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
)

type GRPCHandler struct {
	pb.UnimplementedFlashSaleServer
	exposureService *service.ExposureService
	purchaseService *service.PurchaseService
	now             func() time.Time
}

func NewGRPCHandler(exposureService *service.ExposureService, purchaseService *service.PurchaseService) *GRPCHandler {
	return &GRPCHandler{
		exposureService: exposureService,
		purchaseService: purchaseService,
		now:             time.Now,
	}
}

func (h *GRPCHandler) ExposeItem(ctx context.Context, req *pb.ExposeRequest) (*pb.ExposeResponse, error) {
	exp, err := h.exposureService.Expose(ctx, req.GetItemId(), h.now())
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp := &pb.ExposeResponse{
		ItemId: exp.ItemID,
		State:  string(exp.State),
		Token:  exp.Token,
	}
	if exp.State == domain.ExposureNotYetOpen || exp.State == domain.ExposureClosed {
		resp.Now = exp.Now.UnixMilli()
		resp.StartTime = exp.StartTime.UnixMilli()
		resp.EndTime = exp.EndTime.UnixMilli()
	}
	return resp, nil
}

func (h *GRPCHandler) Purchase(ctx context.Context, req *pb.PurchaseRequest) (*pb.PurchaseResponse, error) {
	res, err := h.purchaseService.Execute(ctx, req.GetItemId(), req.GetCustomerId(), req.GetToken(), h.now())
	if err != nil {
		state := service.StateOf(err)
		if state == domain.PurchaseInternalError {
			return nil, status.Error(codes.Internal, state.Info())
		}
		return &pb.PurchaseResponse{
			Success: false,
			State:   int32(state),
			Message: state.Info(),
		}, nil
	}

	return &pb.PurchaseResponse{
		Success:   true,
		State:     int32(res.State),
		Message:   res.State.Info(),
		CreatedAt: res.Record.CreatedAt.UnixMilli(),
	}, nil
}

func (h *GRPCHandler) GetItem(ctx context.Context, req *pb.GetItemRequest) (*pb.Item, error) {
	item, err := h.exposureService.GetItem(ctx, req.GetItemId())
	if errors.Is(err, service.ErrItemNotFound) {
		return nil, status.Error(codes.NotFound, "item not found")
	}
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &pb.Item{
		Id:                item.ID,
		Name:              item.Name,
		RemainingQuantity: item.RemainingQuantity,
		StartTime:         item.StartTime.UnixMilli(),
		EndTime:           item.EndTime.UnixMilli(),
	}, nil
}
