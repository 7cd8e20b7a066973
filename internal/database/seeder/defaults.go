package seeder

func Defaults() []Seeder {
	return []Seeder{
		DemoUserSeeder{},
		SkillGraphSeeder{},
		ResourceSeeder{},
	}
}
