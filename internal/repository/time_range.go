package repository

import (
	"fmt"
	"time"
)

// DateLayout 全库统一的日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return t, nil
}

// WindowStart 以 endDate 为终点的 days 天窗口（含两端）的起始日期
func WindowStart(endDate string, days int) (string, error) {
	t, err := ParseDate(endDate)
	if err != nil {
		return "", err
	}
	if days < 1 {
		days = 1
	}
	return t.AddDate(0, 0, -(days-1)).Format(DateLayout), nil
}

// NextDay 后一天
func NextDay(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}
