package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yurifrl/agencyfin/pkg/models"
	"github.com/yurifrl/agencyfin/pkg/money"
	"github.com/yurifrl/agencyfin/pkg/store"
)

var (
	clientCmd  = &cobra.Command{Use: "client", Short: "Manage clients"}
	projectCmd = &cobra.Command{Use: "project", Short: "Manage projects"}
	costCmd    = &cobra.Command{Use: "cost", Short: "Manage costs"}
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func amountFlag(cmd *cobra.Command) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString("amount")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

// ---------------- clients ----------------

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		amount, err := amountFlag(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		name, _ := f.GetString("name")
		kind, _ := f.GetString("type")
		start, _ := f.GetString("start")
		email, _ := f.GetString("email")
		company, _ := f.GetString("company")
		notes, _ := f.GetString("notes")

		state, err := a.store.Dispatch(store.AddClient{Client: models.Client{
			Name:      name,
			Type:      models.ClientType(kind),
			Amount:    amount,
			StartDate: start,
			Email:     email,
			Company:   company,
			Notes:     notes,
		}})
		if err != nil {
			return err
		}
		fmt.Printf("Added client %d\n", state.Clients[len(state.Clients)-1].ID)
		return nil
	}),
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		state := a.store.State()
		rows := make([][]string, 0, len(state.Clients))
		for _, c := range state.Clients {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), c.Name, string(c.Type), money.Format(c.Amount, state.Settings.Currency), c.StartDate,
			})
		}
		printTable(os.Stdout, []string{"ID", "Name", "Type", "Amount", "Start"}, rows)
		return nil
	}),
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, err = a.store.Dispatch(store.DeleteClient{ID: id})
		return err
	}),
}

// ---------------- projects ----------------

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		amount, err := amountFlag(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		name, _ := f.GetString("name")
		client, _ := f.GetString("client")
		status, _ := f.GetString("status")
		start, _ := f.GetString("start")
		end, _ := f.GetString("end")
		notes, _ := f.GetString("notes")

		state, err := a.store.Dispatch(store.AddProject{Project: models.Project{
			Name:      name,
			Client:    client,
			Amount:    amount,
			Status:    models.ProjectStatus(status),
			StartDate: start,
			EndDate:   end,
			Notes:     notes,
		}})
		if err != nil {
			return err
		}
		fmt.Printf("Added project %d\n", state.Projects[len(state.Projects)-1].ID)
		return nil
	}),
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		state := a.store.State()
		rows := make([][]string, 0, len(state.Projects))
		for _, p := range state.Projects {
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10), p.Name, p.Client, string(p.Status), money.Format(p.Amount, state.Settings.Currency), p.StartDate,
			})
		}
		printTable(os.Stdout, []string{"ID", "Name", "Client", "Status", "Amount", "Start"}, rows)
		return nil
	}),
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, err = a.store.Dispatch(store.DeleteProject{ID: id})
		return err
	}),
}

// ---------------- costs ----------------

var costAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a cost",
	RunE: run(func(a *app, cmd *cobra.Command, _ []string) error {
		amount, err := amountFlag(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		name, _ := f.GetString("name")
		category, _ := f.GetString("category")
		frequency, _ := f.GetString("frequency")
		start, _ := f.GetString("start")
		notes, _ := f.GetString("notes")

		cost := models.Cost{
			Name:      name,
			Category:  models.CostCategory(category),
			Amount:    amount,
			Frequency: models.Frequency(frequency),
			StartDate: start,
			Notes:     notes,
		}
		state, err := a.store.Dispatch(store.AddCost{Cost: cost})
		if err != nil {
			return err
		}
		costs, _ := state.Costs.Get(cost.Category)
		fmt.Printf("Added %s cost %d\n", cost.Category, costs[len(costs)-1].ID)
		return nil
	}),
}

var costListCmd = &cobra.Command{
	Use:   "list",
	Short: "List costs by category",
	RunE: run(func(a *app, _ *cobra.Command, _ []string) error {
		state := a.store.State()
		var rows [][]string
		for _, c := range state.Costs.All() {
			rows = append(rows, []string{
				strconv.FormatInt(c.ID, 10), string(c.Category), c.Name, string(c.Frequency), money.Format(c.Amount, state.Settings.Currency),
			})
		}
		printTable(os.Stdout, []string{"ID", "Category", "Name", "Frequency", "Amount"}, rows)
		return nil
	}),
}

var costDeleteCmd = &cobra.Command{
	Use:   "delete <category> <id>",
	Short: "Delete a cost",
	Args:  cobra.ExactArgs(2),
	RunE: run(func(a *app, _ *cobra.Command, args []string) error {
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		_, err = a.store.Dispatch(store.DeleteCost{Category: models.CostCategory(args[0]), ID: id})
		return err
	}),
}

func init() {
	clientAddCmd.Flags().String("name", "", "Client name")
	clientAddCmd.Flags().String("type", string(models.ClientRetainer), "retainer or one-time")
	clientAddCmd.Flags().String("amount", "0", "Contract amount")
	clientAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	clientAddCmd.Flags().String("email", "", "Contact email")
	clientAddCmd.Flags().String("company", "", "Company")
	clientAddCmd.Flags().String("notes", "", "Notes")
	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientDeleteCmd)

	projectAddCmd.Flags().String("name", "", "Project name")
	projectAddCmd.Flags().String("client", "", "Client name")
	projectAddCmd.Flags().String("amount", "0", "Project value")
	projectAddCmd.Flags().String("status", string(models.ProjectPending), "pending, in-progress, completed or cancelled")
	projectAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	projectAddCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	projectAddCmd.Flags().String("notes", "", "Notes")
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectDeleteCmd)

	costAddCmd.Flags().String("name", "", "Cost name")
	costAddCmd.Flags().String("category", string(models.CostOperations), "team, marketing or operations")
	costAddCmd.Flags().String("amount", "0", "Amount")
	costAddCmd.Flags().String("frequency", string(models.FrequencyMonthly), "monthly, quarterly, yearly or one-time")
	costAddCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	costAddCmd.Flags().String("notes", "", "Notes")
	costCmd.AddCommand(costAddCmd, costListCmd, costDeleteCmd)
}
