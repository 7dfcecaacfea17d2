package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/wenshu/config"
	"github.com/ByLCY/wenshu/fontres"
	"github.com/ByLCY/wenshu/generator"
	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/store"
)

var (
	cfgPath string
	cfg     *config.Config
	log     *logger.Logger
	gen     *generator.Generator
)

var rootCmd = &cobra.Command{
	Use:           "wenshu",
	Short:         "结构化文书生成工具",
	Long:          "按模板生成申请、合同等中文文书，支持语体改写、手写图片与 PDF 输出。",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("创建数据目录失败: %w", err)
		}
		gen = generator.New(store.NewFileStore(cfg.DataDir), fontres.NewDirResolver(cfg.FontDirs...), log)
		return nil
	},
}

var (
	genSets  []string
	genStyle string
	genImage string
	genPDF   string
)

var generateCmd = &cobra.Command{
	Use:   "generate <模板id>",
	Short: "生成文书文本、手写图片或 PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseSets(genSets)
		if err != nil {
			return err
		}
		id := args[0]

		switch {
		case genImage != "":
			out := genImage
			if !filepath.IsAbs(out) && filepath.Dir(out) == "." {
				out = filepath.Join(cfg.OutputDir, out)
			}
			_, path, err := gen.RenderImage(id, values, genStyle, out)
			if err != nil {
				return err
			}
			fmt.Printf("已生成手写图片：%s\n", path)
		case genPDF != "":
			data, err := gen.RenderPDF(id, values, genStyle, "")
			if err != nil {
				return err
			}
			out := genPDF
			if !filepath.IsAbs(out) && filepath.Dir(out) == "." {
				out = filepath.Join(cfg.OutputDir, out)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("创建输出目录失败: %w", err)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("写入 PDF 文件失败: %w", err)
			}
			fmt.Printf("已生成 PDF：%s\n", out)
		default:
			text, err := gen.Generate(id, values, genStyle)
			if err != nil {
				return err
			}
			fmt.Println(text)
		}
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "列出全部模板",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, tpl := range gen.ListTemplates() {
			fmt.Printf("%-24s %s（%s）语体：%s\n", tpl.ID, tpl.Name, tpl.Description, strings.Join(tpl.Styles, "/"))
		}
		return nil
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <模板id>",
	Short: "列出模板声明的字段",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := gen.FieldsOf(args[0])
		if err != nil {
			return err
		}
		for _, f := range fields {
			fmt.Println(f)
		}
		return nil
	},
}

var (
	trainSets       []string
	trainSynthesize int
)

var trainCmd = &cobra.Command{
	Use:   "train [模板id]",
	Short: "记录训练样本并重算学习默认值",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if trainSynthesize > 0 {
			learned, err := gen.SynthesizeTraining(trainSynthesize)
			if err != nil {
				return err
			}
			fmt.Printf("已为 %d 个模板合成训练样本\n", len(learned))
			return nil
		}
		if len(args) == 0 || len(trainSets) == 0 {
			return fmt.Errorf("需要指定模板 id 与至少一个 --set 字段=值，或使用 --synthesize")
		}
		values, err := parseSets(trainSets)
		if err != nil {
			return err
		}
		if err := gen.RecordTraining(args[0], values); err != nil {
			return err
		}
		learned, err := gen.RecomputeDefaults()
		if err != nil {
			return err
		}
		fmt.Printf("已记录训练样本，%s 当前学习默认值 %d 项\n", args[0], len(learned[args[0]]))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [模板id]",
	Short: "查看生成历史",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			entry, ok := gen.History.Latest(args[0])
			if !ok {
				return fmt.Errorf("模板 %s 没有生成记录", args[0])
			}
			fmt.Printf("%s  %s\n\n%s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.TemplateID, entry.Text)
			return nil
		}
		for _, entry := range gen.History.List() {
			line := fmt.Sprintf("%s  %-24s %s", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.TemplateID, entry.ID)
			if entry.ImagePath != "" {
				line += "  " + entry.ImagePath
			}
			fmt.Println(line)
		}
		return nil
	},
}

// parseSets 解析重复的 --set 字段=值 参数。
func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(sets))
	for _, kv := range sets {
		idx := strings.Index(kv, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("无法解析字段赋值 %q，期望 字段=值", kv)
		}
		values[kv[:idx]] = kv[idx+1:]
	}
	return values, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "wenshu.yaml", "配置文件路径")

	generateCmd.Flags().StringArrayVar(&genSets, "set", nil, "字段赋值，格式 字段=值，可重复")
	generateCmd.Flags().StringVar(&genStyle, "style", "", "语体：formal/neutral/strict，默认 neutral")
	generateCmd.Flags().StringVar(&genImage, "image", "", "手写图片输出路径")
	generateCmd.Flags().StringVar(&genPDF, "pdf", "", "PDF 输出路径")

	trainCmd.Flags().StringArrayVar(&trainSets, "set", nil, "字段赋值，格式 字段=值，可重复")
	trainCmd.Flags().IntVar(&trainSynthesize, "synthesize", 0, "为每个模板合成的训练样本数")

	rootCmd.AddCommand(generateCmd, templatesCmd, fieldsCmd, trainCmd, historyCmd)
}

func main() {
	err := rootCmd.Execute()
	if log != nil {
		log.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}
