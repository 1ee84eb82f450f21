package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// cliTimeout 命令行单次操作的最长时间
const cliTimeout = 15 * time.Second

var (
	cfgFile string
	choose  string
)

// rootCmd 不带子命令时进入行情界面
var rootCmd = &cobra.Command{
	Use:   "stockbar",
	Short: "沪深港自选股行情",
	Long: `沪深港自选股行情

不带子命令时进入全屏行情界面。

Examples:
  stockbar                   # 行情界面
  stockbar list              # 打印自选列表和最新行情
  stockbar add 600519        # 自动判断市场后加入
  stockbar add 000001 --choose sz
  stockbar pin sz 000001
  stockbar remove hk 00700`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runTUI)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "打印自选列表和最新行情",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *App) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			r := app.Reconciler
			quotes := r.Refresh(ctx, r.Watchlist())
			printWatchlist(r.Watchlist(), quotes)
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add CODE",
	Short: "解析代码所属市场并加入自选",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *App) error {
			ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
			defer cancel()
			return runAdd(ctx, app.Reconciler, args[0], choose)
		})
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin MARKET CODE",
	Short: "把条目移到最前面",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		market, err := ParseMarket(args[0])
		if err != nil {
			return err
		}
		return withApp(func(app *App) error {
			printWatchlist(app.Reconciler.Pin(market, args[1]), nil)
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove MARKET CODE",
	Short: "从自选中删除",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		market, err := ParseMarket(args[0])
		if err != nil {
			return err
		}
		return withApp(func(app *App) error {
			printWatchlist(app.Reconciler.Remove(market, args[1]), nil)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", configFile, "配置文件路径")
	addCmd.Flags().StringVar(&choose, "choose", "", "沪深两市都有该代码时选择的市场 (sh|sz)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(removeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp 初始化组件，执行完后释放
func withApp(fn func(app *App) error) error {
	app, err := newApp(cfgFile)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

// runAdd 命令行添加；两市都有时需要 --choose 才能落地
func runAdd(ctx context.Context, r *Reconciler, code, choice string) error {
	res := r.ResolveAndAdd(ctx, code)
	switch res.Action {
	case ActionAdded:
		fmt.Printf("added %s (%s)\n", res.Entry, res.Rule)
		return nil
	case ActionRejected:
		return fmt.Errorf("rejected %s: %s", code, res.Reason)
	}

	if choice == "" {
		fmt.Printf("%s exists on both markets:\n", res.Pending.Code)
		for _, q := range []*Quote{res.Pending.CandidateSH, res.Pending.CandidateSZ} {
			fmt.Printf("  %s  %s  %s\n", q.Market, q.Name, formatPrice(*q))
		}
		return fmt.Errorf("ambiguous code %s: rerun with --choose sh|sz", res.Pending.Code)
	}
	market, err := ParseMarket(choice)
	if err != nil {
		return err
	}
	entry, err := r.ConfirmPending(market)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", choice, err)
	}
	fmt.Printf("added %s\n", entry)
	return nil
}

// printWatchlist 按自选顺序打印；quotes 为 nil 时只打印条目
func printWatchlist(list Watchlist, quotes []Quote) {
	if quotes == nil {
		keys := make([]string, len(list))
		for i, entry := range list {
			keys[i] = entry.Key()
		}
		fmt.Println(strings.Join(keys, "\n"))
		return
	}
	cols := columnsForFontSize("xl", true)
	fmt.Println(renderQuoteTable(quotes, cols, -1, currentLanguage))
}
