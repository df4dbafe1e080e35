package cmd

import (
	"context"
	"fmt"
	"sort"

	"bmapp/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix    string
	minioStats     bool
	minioRecursive bool
	minioDelete    bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `查看和管理音频与许可文件所在的MinIO存储桶，支持列出文件、查看统计信息、递归显示、删除目录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.New(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		if minioDelete {
			n, err := store.DeletePrefix(ctx, minioPrefix)
			if err != nil {
				return fmt.Errorf("删除目录失败: %w", err)
			}
			fmt.Printf("已删除 %s 下的 %d 个对象\n", minioPrefix, n)
			return nil
		}

		objects, stats, err := store.List(ctx, minioPrefix, minioRecursive)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}

		if minioStats {
			printBucketStats(store.Bucket(), stats)
			return nil
		}

		rows := make([][]string, 0, len(objects))
		for _, o := range objects {
			rows = append(rows, []string{
				o.Key,
				storage.FormatSize(o.Size),
				o.ContentType,
				o.LastModified.Format("2006-01-02 15:04:05"),
			})
		}
		fmt.Println(renderTable([]string{"Key", "Size", "Content-Type", "Last Modified"}, rows, 1))
		fmt.Printf("共 %d 个对象, %s\n", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		return nil
	},
}

func printBucketStats(bucket string, stats *storage.BucketStats) {
	kinds := make([]string, 0, len(stats.SizeByKind))
	for k := range stats.SizeByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{k, storage.FormatSize(stats.SizeByKind[k])})
	}
	fmt.Printf("存储桶: %s\n", bucket)
	fmt.Printf("对象数: %d, 总大小: %s\n", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		fmt.Printf("最后修改: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Println(renderTable([]string{"Kind", "Size"}, rows, 1))
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件或指定要操作的目录")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")
	minioCmd.Flags().BoolVarP(&minioRecursive, "recursive", "r", false, "递归列出子目录")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "删除指定目录及其下的所有文件")

	minioCmd.Example = `  # 列出顶层文件
  bmapp minio

  # 递归列出上传的音频
  bmapp minio -r -p "audio/"

  # 显示存储桶统计信息
  bmapp minio -s -r

  # 删除许可文件目录
  bmapp minio -d -p "licenses/"`
}
