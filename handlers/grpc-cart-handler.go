package handlers

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shopcart/internal/cart"
	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

const cartServiceName = "shopcart.CartService"

// CartServiceServer is the read side of the cart exposed over gRPC. Payloads
// are protobuf well-known types, so no generated code is needed.
type CartServiceServer interface {
	GetCartDetails(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTotal(context.Context, *emptypb.Empty) (*wrapperspb.DoubleValue, error)
	GetCartedIds(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

type cartReader interface {
	GetAll(ctx context.Context) ([]cart.Line, error)
	GetTotal(ctx context.Context) float64
	GetCartedIDs(ctx context.Context) cart.IDSet
}

type cartItemService struct {
	cart cartReader
}

func NewCartItemServiceHandler(c cartReader) CartServiceServer {
	return &cartItemService{cart: c}
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func (s *cartItemService) GetCartDetails(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	lines, err := s.cart.GetAll(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get cart details: %v", err)
	}

	items := make([]interface{}, 0, len(lines))
	for _, l := range lines {
		item := map[string]interface{}{
			"id":        l.ProductID,
			"name":      l.Name,
			"attribute": l.Attribute,
			"priceText": l.PriceText,
			"imageURL":  l.BestImageURL(),
			"quantity":  l.Quantity,
		}
		if l.Price != nil {
			item["price"] = *l.Price
		}
		items = append(items, item)
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"items": items,
		"total": s.cart.GetTotal(ctx),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode cart details: %v", err)
	}
	return out, nil
}

func (s *cartItemService) GetTotal(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.DoubleValue, error) {
	return wrapperspb.Double(s.cart.GetTotal(ctx)), nil
}

func (s *cartItemService) GetCartedIds(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	ids := s.cart.GetCartedIDs(ctx).Sorted()
	values := make([]*structpb.Value, 0, len(ids))
	for _, id := range ids {
		values = append(values, structpb.NewStringValue(id))
	}
	return &structpb.ListValue{Values: values}, nil
}

// UnaryLogger gives every call a trace id, taken from the x-trace-id metadata when present.
func UnaryLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	var traceId string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-trace-id"); len(v) > 0 {
			traceId = v[0]
		}
	}
	ctx = ctxmanage.WithTraceID(ctx, traceId)
	traceId = ctxmanage.TraceIDFromContext(ctx)

	start := time.Now()
	resp, err := handler(ctx, req)
	attrs := []any{slog.String(logkey.TraceID, traceId), slog.String("Method", info.FullMethod),
		slog.String("Code", status.Code(err).String()), slog.Duration("Duration", time.Since(start))}
	if err != nil {
		slog.Error("grpc call failed", append(attrs, slog.String(logkey.ERROR, err.Error()))...)
	} else {
		slog.Info("grpc call completed", attrs...)
	}
	return resp, err
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCartDetails", Handler: unaryHandler("GetCartDetails", CartServiceServer.GetCartDetails)},
		{MethodName: "GetTotal", Handler: unaryHandler("GetTotal", CartServiceServer.GetTotal)},
		{MethodName: "GetCartedIds", Handler: unaryHandler("GetCartedIds", CartServiceServer.GetCartedIds)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopcart/cart.proto",
}

type methodHandler = func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error)

func unaryHandler[Resp any](method string, call func(CartServiceServer, context.Context, *emptypb.Empty) (Resp, error)) methodHandler {
	fullMethod := "/" + cartServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CartServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}
