package main

import (
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 1. 定义与数据库表对应的结构体
type DepotRow struct {
	ID     string
	Name   string
	City   string
	Status int
}

func main() {
	fmt.Println(">>> 开始执行全链路测试...")

	// ------------------------------------------------
	// 2. 连接数据库
	// ------------------------------------------------
	dsn := "host=localhost user=gas_admin password=1234 dbname=depot_gas port=5432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	fmt.Println("✅ 数据库连接成功！")

	// ------------------------------------------------
	// 3. 从数据库读取气站
	// ------------------------------------------------
	var depot DepotRow
	// 查找任意一个营业中的气站
	result := db.Table("depots").Where("status = ?", 1).First(&depot)
	if result.Error != nil {
		log.Fatalf("❌ 未找到营业中的气站，请检查数据库是否已插入数据: %v", result.Error)
	}
	fmt.Printf("✅ 读取气站成功: [Name: %s] [City: %s]\n", depot.Name, depot.City)

	// ------------------------------------------------
	// 4. 请求远端配置接口
	// ------------------------------------------------
	client := resty.New()

	// 设置超时和重试，防止网络波动
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	fmt.Println(">>> 正在请求远端配置接口...")

	resp, err := client.R().Get("http://localhost:8080/api/settings")

	// ------------------------------------------------
	// 5. 结果验证
	// ------------------------------------------------
	if err != nil {
		log.Fatalf("❌ 请求失败 (配置服务可能未启动): %v", err)
	}

	if resp.StatusCode() == 200 {
		fmt.Println("🎉🎉🎉 测试成功！全链路已打通！")
		fmt.Printf("配置响应: %s\n", resp.String())
	} else {
		fmt.Printf("⚠️ 连接通了，但配置服务拒绝了请求 (状态码 %d)\n", resp.StatusCode())
		fmt.Printf("错误信息: %s\n", resp.String())
	}
}
