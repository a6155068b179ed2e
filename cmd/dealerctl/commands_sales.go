package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"dealer/internal/app"
	saleservice "dealer/internal/sale/service"
	id "dealer/pkg/domain"
)

type registerSaleCmd struct {
	actor, client, employee, payment, vehicle string
	seasonal, frequent                        bool
}

func (*registerSaleCmd) Name() string     { return "register-sale" }
func (*registerSaleCmd) Synopsis() string { return "sell one vehicle to a client" }
func (*registerSaleCmd) Usage() string {
	return `dealerctl register-sale -client <id> -employee <id> -payment <id> -vehicle <id> [-seasonal] [-frequent]
`
}

func (c *registerSaleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.actor, "actor", "", "Actor recorded on the audit trail (defaults to system).")
	f.StringVar(&c.client, "client", "", "Client ID.")
	f.StringVar(&c.employee, "employee", "", "Selling employee ID.")
	f.StringVar(&c.payment, "payment", "", "Payment method ID.")
	f.StringVar(&c.vehicle, "vehicle", "", "Vehicle ID.")
	f.BoolVar(&c.seasonal, "seasonal", false, "Apply the seasonal discount.")
	f.BoolVar(&c.frequent, "frequent", false, "Apply the frequent-client discount.")
}

func (c *registerSaleCmd) command() (saleservice.RegisterSaleCommand, error) {
	cmd := saleservice.RegisterSaleCommand{
		Quantity:               1,
		SeasonalDiscount:       c.seasonal,
		FrequentClientDiscount: c.frequent,
	}
	var err error
	if cmd.ClientID, err = id.ParseClientID(c.client); err != nil {
		return cmd, err
	}
	if cmd.EmployeeID, err = id.ParseEmployeeID(c.employee); err != nil {
		return cmd, err
	}
	if cmd.PaymentMethodID, err = id.ParsePaymentMethodID(c.payment); err != nil {
		return cmd, err
	}
	if cmd.VehicleID, err = id.ParseVehicleID(c.vehicle); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func (c *registerSaleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cmd, err := c.command()
	if err != nil {
		return fail(err)
	}
	return withEngine(ctx, c.actor, func(ctx context.Context, env *cliEnv, e *app.Engine) error {
		saleID, err := e.Sales.RegisterSale(ctx, cmd)
		if err != nil {
			return err
		}
		detail, err := e.Sales.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		fmt.Printf("sale %s registered: total %s, discount %s\n", saleID,
			detail.Sale.Total.Format(env.cfg.Server.Currency),
			detail.Sale.Discount.Format(env.cfg.Server.Currency))
		return nil
	})
}

type cancelSaleCmd struct {
	actor, sale string
}

func (*cancelSaleCmd) Name() string     { return "cancel-sale" }
func (*cancelSaleCmd) Synopsis() string { return "cancel an ACTIVE sale and release its vehicles" }
func (*cancelSaleCmd) Usage() string {
	return `dealerctl cancel-sale -sale <id> [-actor <name>]
`
}

func (c *cancelSaleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.actor, "actor", "", "Actor recorded on the audit trail (defaults to system).")
	f.StringVar(&c.sale, "sale", "", "Sale ID.")
}

func (c *cancelSaleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	saleID, err := id.ParseSaleID(c.sale)
	if err != nil {
		return fail(err)
	}
	return withEngine(ctx, c.actor, func(ctx context.Context, _ *cliEnv, e *app.Engine) error {
		if err := e.Sales.CancelSale(ctx, saleID); err != nil {
			return err
		}
		fmt.Printf("sale %s cancelled\n", saleID)
		return nil
	})
}

type classifyCmd struct {
	client string
}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "show a client's loyalty tier" }
func (*classifyCmd) Usage() string {
	return `dealerctl classify -client <id>
`
}

func (c *classifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.client, "client", "", "Client ID.")
}

func (c *classifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	clientID, err := id.ParseClientID(c.client)
	if err != nil {
		return fail(err)
	}
	return withEngine(ctx, "", func(ctx context.Context, env *cliEnv, e *app.Engine) error {
		class, err := e.Classification.Classify(ctx, clientID)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%d active sales, %s spent)\n", clientID, class.Tier,
			class.TotalActiveSales, class.TotalSpend.Format(env.cfg.Server.Currency))
		return nil
	})
}
