package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"gratisdns-manager/internal/config"
	"gratisdns-manager/internal/core"
	"gratisdns-manager/internal/daemon"
	"gratisdns-manager/internal/provider/gratisdns"
)

func printUsage() {
	fmt.Println(`SSL证书自动管理工具 (基于ACME dns-01验证，支持GratisDNS、阿里云、腾讯云、华为云)

用法:
  gratisdns-manager [config.yaml]                              # 检查并申请证书（单次运行）
  gratisdns-manager [config.yaml] start                        # 启动守护进程（后台运行）
  gratisdns-manager [config.yaml] stop                         # 停止守护进程
  gratisdns-manager [config.yaml] restart                      # 重启守护进程
  gratisdns-manager [config.yaml] status                       # 查看运行状态
  gratisdns-manager [config.yaml] daemon                       # 前台守护进程模式（调试用）
  gratisdns-manager [config.yaml] check <域名>                 # 检查GratisDNS凭证和域名归属
  gratisdns-manager [config.yaml] add <域名> <验证域名> <值>   # 手动添加TXT验证记录
  gratisdns-manager [config.yaml] del <域名> <验证域名> <值>   # 手动删除TXT验证记录

示例:
  gratisdns-manager                            # 使用默认配置，单次运行
  gratisdns-manager config.yaml start          # 后台启动守护进程
  gratisdns-manager config.yaml check example.com
  gratisdns-manager config.yaml add example.com _acme-challenge.example.com abc123

支持的DNS提供商:
  - gratisdns  GratisDNS网页后台 (默认，需要TOTP二次验证)
  - aliyun     阿里云
  - tencent    腾讯云
  - huawei     华为云

配置文件示例:
  gratisdns:
    username: "user@example.com"
    password: "xxx"
    otp_secret: "BASE32SECRET"

  acme:
    email: "user@example.com"

  domains:
    - domain: "example.com"
      sans: ["www.example.com"]
      renew_days: 7
    - domain: "cloud.example.cn"
      dns_provider: "aliyun"
      renew_days: 10

  output_dir: "./certs"
  check_interval: 24
  propagation_seconds: 660`)
}

// knownCommands 子命令集合，用于区分首个参数是配置文件还是命令
var knownCommands = map[string]bool{
	"start":   true,
	"stop":    true,
	"restart": true,
	"status":  true,
	"daemon":  true,
	"check":   true,
	"add":     true,
	"del":     true,
}

// parseArgs 解析命令行参数
//
// 配置文件路径可省略：首个参数不是已知命令时视为配置文件路径，
// 否则使用默认路径，命令和其余参数依次后移。
func parseArgs(argv []string) (configPath, command string, rest []string) {
	configPath = "config.yaml"

	if len(argv) > 0 && !knownCommands[argv[0]] {
		configPath = argv[0]
		argv = argv[1:]
	}
	if len(argv) > 0 {
		command = argv[0]
		rest = argv[1:]
	}
	return configPath, command, rest
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		return
	}

	configPath, command, args := parseArgs(os.Args[1:])

	// 处理守护进程命令
	switch command {
	case "start":
		handleStart(configPath)
		return
	case "stop":
		handleStop(configPath)
		return
	case "restart":
		handleRestart(configPath)
		return
	case "status":
		handleStatus(configPath)
		return
	case "daemon":
		runDaemonForeground(configPath)
		return
	case "check":
		handleCheck(configPath, args)
		return
	case "add", "del":
		handleRecord(configPath, command, args)
		return
	}

	// 默认：单次运行
	runOnce(configPath)
}

func handleStart(configPath string) {
	d := daemon.NewDaemon(configPath)

	// 启动守护进程（如果不是已经后台化的进程，会启动子进程并返回）
	if err := d.Start(); err != nil {
		log.Fatalf("启动失败: %v", err)
	}

	// 如果是后台化的子进程，继续执行守护逻辑
	if daemon.IsDaemonized() {
		runDaemonBackground(configPath, d)
	}
}

func handleStop(configPath string) {
	d := daemon.NewDaemon(configPath)
	if err := d.Stop(); err != nil {
		log.Fatalf("停止失败: %v", err)
	}
}

func handleRestart(configPath string) {
	d := daemon.NewDaemon(configPath)
	if err := d.Restart(); err != nil {
		log.Fatalf("重启失败: %v", err)
	}
}

func handleStatus(configPath string) {
	d := daemon.NewDaemon(configPath)
	d.Status()
}

// handleCheck 检查GratisDNS凭证和域名归属
func handleCheck(configPath string, args []string) {
	if len(args) < 1 {
		log.Fatalf("用法: gratisdns-manager [config.yaml] check <域名>")
	}
	domain := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if cfg.GratisDNS == nil {
		log.Fatalf("配置中缺少 gratisdns 凭证")
	}

	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()

	p := gratisdns.New(gratisdns.Config{
		Username:  cfg.GratisDNS.Username,
		Password:  cfg.GratisDNS.Password,
		OTPSecret: cfg.GratisDNS.OTPSecret,
		BaseURL:   cfg.GratisDNS.BaseURL,
		TTL:       cfg.GratisDNS.TTL,
		Timeout:   time.Duration(cfg.GratisDNS.Timeout) * time.Second,
	})

	if err := p.CheckAccess(sigHandler.Context(), domain); err != nil {
		log.Fatalf("检查失败: %v", err)
	}
	log.Printf("凭证有效，域名 %s 在账户中", domain)
}

// handleRecord 手动添加/删除TXT验证记录
func handleRecord(configPath, command string, args []string) {
	if len(args) < 3 {
		log.Fatalf("用法: gratisdns-manager [config.yaml] %s <域名> <验证域名> <值> [提供商]", command)
	}

	domain := args[0]
	validationName := args[1]
	value := args[2]

	providerName := "gratisdns"
	if len(args) > 3 {
		providerName = args[3]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	dnsProvider, err := core.NewFactory(cfg).GetDNSProvider(providerName)
	if err != nil {
		log.Fatalf("获取DNS提供商失败: %v", err)
	}

	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()
	ctx := sigHandler.Context()

	switch command {
	case "add":
		err = dnsProvider.AddTXTRecord(ctx, domain, validationName, value)
	case "del":
		err = dnsProvider.DelTXTRecord(ctx, domain, validationName, value)
	}
	if err != nil {
		log.Fatalf("操作失败: %v", err)
	}
}

func runDaemonBackground(configPath string, d *daemon.Daemon) {
	// 写入 PID
	if err := d.WritePid(); err != nil {
		log.Fatalf("写入PID失败: %v", err)
	}
	defer d.RemovePid()

	// 信号处理
	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建管理器
	manager, err := core.NewManager(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	log.Printf("守护进程已启动，PID: %d，检查间隔: %d 小时", os.Getpid(), cfg.CheckInterval)

	ctx := sigHandler.Context()

	// 立即执行一次
	if err := manager.Run(ctx); err != nil {
		log.Printf("运行出错: %v", err)
	}

	// 主循环
	ticker := time.NewTicker(time.Duration(cfg.CheckInterval) * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("守护进程正在退出...")
			return
		case <-ticker.C:
			log.Printf("开始定时检查...")
			if err := manager.Run(ctx); err != nil {
				log.Printf("运行出错: %v", err)
			}
		}
	}
}

func runDaemonForeground(configPath string) {
	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建管理器
	manager, err := core.NewManager(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 信号处理
	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()

	ctx := sigHandler.Context()

	log.Printf("启动前台守护进程模式，检查间隔: %d 小时", cfg.CheckInterval)

	// 立即执行一次
	if err := manager.Run(ctx); err != nil {
		log.Printf("运行出错: %v", err)
	}

	// 主循环
	ticker := time.NewTicker(time.Duration(cfg.CheckInterval) * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("收到退出信号，正在退出...")
			return
		case <-ticker.C:
			log.Printf("开始定时检查...")
			if err := manager.Run(ctx); err != nil {
				log.Printf("运行出错: %v", err)
			}
		}
	}
}

func runOnce(configPath string) {
	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建管理器
	manager, err := core.NewManager(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 信号处理
	sigHandler := daemon.NewSignalHandler()
	sigHandler.Start()

	ctx := sigHandler.Context()

	// 单次运行
	if err := manager.Run(ctx); err != nil {
		log.Fatalf("运行出错: %v", err)
	}
}
