package cmd

import (
	"context"
	"fmt"
	"strconv"

	"bmapp/core/catalog"
	"bmapp/server"

	"github.com/spf13/cobra"
)

var (
	searchPage  string
	searchLimit string
	searchType  string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "音频目录查询工具",
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "按关键字检索音频目录",
	Long:  `使用与 GET /api/audio 相同的规范化与分页规则检索音频目录，并以表格形式输出。`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		stores, err := server.OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close(ctx)

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		params := catalog.ParseSearchParams(searchPage, searchLimit, query, searchType)
		page, err := catalog.NewService(stores.Audio, nil).Search(ctx, params)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Items))
		for _, c := range page.Items {
			rows = append(rows, []string{
				c.ID,
				c.Title,
				c.Category,
				string(c.Type),
				strconv.FormatFloat(c.Rating, 'f', 1, 64),
				c.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		fmt.Println(renderTable([]string{"ID", "Title", "Category", "Type", "Rating", "Created"}, rows, 4))
		fmt.Printf("page %d/limit %d, total %d, hasMore=%t\n", page.Page, page.Limit, page.Total, page.HasMore)
		return nil
	},
}

func init() {
	catalogSearchCmd.Flags().StringVarP(&searchPage, "page", "p", "1", "页码")
	catalogSearchCmd.Flags().StringVarP(&searchLimit, "limit", "l", "20", "每页数量 (1-100)")
	catalogSearchCmd.Flags().StringVarP(&searchType, "type", "t", "", "按类型过滤: music, sound, background-music, fx")

	catalogCmd.AddCommand(catalogSearchCmd)
	rootCmd.AddCommand(catalogCmd)
}
