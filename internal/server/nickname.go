package server

import "math/rand/v2"

// 昵称词库
var (
	adjectives = []string{
		"精明的", "豪爽的", "谨慎的", "热情的", "老练的",
		"大胆的", "稳重的", "急躁的", "幸运的", "健谈的",
		"挑剔的", "慷慨的", "机灵的", "固执的", "淡定的",
	}

	nouns = []string{
		"车商", "买家", "估价师", "销售", "车主",
		"拍卖师", "收藏家", "技师", "试驾员", "经纪人",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
