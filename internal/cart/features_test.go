package cart_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"shopcart/internal/cart"
)

type cartTestContext struct {
	svc *cart.Service
	err error
}

func (c *cartTestContext) reset() {
	if c.svc != nil {
		c.svc.Close()
	}
	c.svc = cart.NewService(cart.NewMemoryStore())
	c.err = nil
}

func (c *cartTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *cartTestContext) iAddProductPriced(id, priceText string) error {
	c.err = c.svc.AddToCart(context.Background(), product(id, priceText))
	return c.err
}

func (c *cartTestContext) iIncrementProduct(id string) error {
	_, c.err = c.svc.Increment(context.Background(), id)
	return nil
}

func (c *cartTestContext) iDecrementProduct(id string) error {
	_, c.err = c.svc.Decrement(context.Background(), id)
	return c.err
}

func (c *cartTestContext) iDeleteProduct(id string) error {
	c.err = c.svc.Remove(context.Background(), id)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.err = c.svc.Clear(context.Background())
	return c.err
}

func (c *cartTestContext) theCartHasLines(n int) error {
	lines, err := c.svc.GetAll(context.Background())
	if err != nil {
		return err
	}
	if len(lines) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(lines))
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(id string, quantity int) error {
	line, err := c.svc.GetLine(context.Background(), id)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("product %s is not in the cart", id)
	}
	if int(line.Quantity) != quantity {
		return fmt.Errorf("expected quantity %d for %s, got %d", quantity, id, line.Quantity)
	}
	return nil
}

func (c *cartTestContext) theTotalIs(s string) error {
	want, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	got := c.svc.GetTotal(context.Background())
	if math.Abs(got-want) > 1e-9 {
		return fmt.Errorf("expected total %.2f, got %.2f", want, got)
	}
	return nil
}

func (c *cartTestContext) theCartedIdsAreEmpty() error {
	ids := c.svc.GetCartedIDs(context.Background())
	if len(ids) != 0 {
		return fmt.Errorf("expected no carted ids, got %v", ids.Sorted())
	}
	return nil
}

func (c *cartTestContext) theLastOperationSucceeded() error {
	return c.err
}

func (c *cartTestContext) theLastOperationFailedWithNotFound() error {
	if !errors.Is(c.err, cart.ErrNotFound) {
		return fmt.Errorf("expected not found, got %v", c.err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.svc != nil {
			tc.svc.Close()
			tc.svc = nil
		}
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product "([^"]*)" priced "([^"]*)"$`, tc.iAddProductPriced)
	ctx.Step(`^I increment product "([^"]*)"$`, tc.iIncrementProduct)
	ctx.Step(`^I decrement product "([^"]*)"$`, tc.iDecrementProduct)
	ctx.Step(`^I delete product "([^"]*)"$`, tc.iDeleteProduct)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product "([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the total is (\d+\.\d+)$`, tc.theTotalIs)
	ctx.Step(`^the carted ids are empty$`, tc.theCartedIdsAreEmpty)
	ctx.Step(`^the last operation succeeded$`, tc.theLastOperationSucceeded)
	ctx.Step(`^the last operation failed with not found$`, tc.theLastOperationFailedWithNotFound)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
