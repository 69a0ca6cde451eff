package handlers

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"shopcart/internal/cart"
	"shopcart/internal/catalog"
)

func dialCartService(t *testing.T, reader cartReader) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(UnaryLogger))
	RegisterCartServiceServer(s, NewCartItemServiceHandler(reader))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCCartService(t *testing.T) {
	ctx := context.Background()
	svc := cart.NewService(cart.NewMemoryStore())
	defer svc.Close()

	price := 10.0
	require.NoError(t, svc.AddToCart(ctx, catalog.Product{ID: "p1", Name: "Apple", Price: &price, PriceText: "₺10,00"}))
	require.NoError(t, svc.AddToCart(ctx, catalog.Product{ID: "p1", Name: "Apple", Price: &price, PriceText: "₺10,00"}))
	require.NoError(t, svc.AddToCart(ctx, catalog.Product{ID: "p2", Name: "Pear", PriceText: "₺2,50"}))

	conn := dialCartService(t, svc)

	total := new(wrapperspb.DoubleValue)
	require.NoError(t, conn.Invoke(ctx, "/shopcart.CartService/GetTotal", &emptypb.Empty{}, total))
	assert.InDelta(t, 22.5, total.GetValue(), 1e-9)

	ids := new(structpb.ListValue)
	require.NoError(t, conn.Invoke(ctx, "/shopcart.CartService/GetCartedIds", &emptypb.Empty{}, ids))
	assert.Equal(t, []interface{}{"p1", "p2"}, ids.AsSlice())

	details := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, "/shopcart.CartService/GetCartDetails", &emptypb.Empty{}, details))
	m := details.AsMap()
	assert.InDelta(t, 22.5, m["total"], 1e-9)
	items, ok := m["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "p1", first["id"])
	assert.Equal(t, float64(2), first["quantity"])
	assert.Equal(t, float64(10), first["price"])
	_, hasPrice := items[1].(map[string]interface{})["price"]
	assert.False(t, hasPrice)
}

type brokenReader struct{}

func (brokenReader) GetAll(context.Context) ([]cart.Line, error) { return nil, cart.ErrClosed }
func (brokenReader) GetTotal(context.Context) float64            { return 0 }
func (brokenReader) GetCartedIDs(context.Context) cart.IDSet     { return cart.IDSet{} }

func TestGRPCCartService_Errors(t *testing.T) {
	conn := dialCartService(t, brokenReader{})

	err := conn.Invoke(context.Background(), "/shopcart.CartService/GetCartDetails", &emptypb.Empty{}, new(structpb.Struct))
	assert.Equal(t, codes.Internal, status.Code(err))

	err = conn.Invoke(context.Background(), "/shopcart.CartService/Nope", &emptypb.Empty{}, new(structpb.Struct))
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
