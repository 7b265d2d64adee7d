package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE flows (
				id VARCHAR(128) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				graph JSONB NOT NULL,
				variables JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_flows_created_at ON flows(created_at);
		`,
		2: `
			CREATE TABLE executions (
				id VARCHAR(128) PRIMARY KEY,
				flow_id VARCHAR(128) NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
				status VARCHAR(32) NOT NULL,
				results JSONB NOT NULL DEFAULT '[]',
				logs JSONB NOT NULL DEFAULT '[]',
				trigger_data JSONB,
				error TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				ended_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_flow_id ON executions(flow_id, started_at DESC);
		`,
	}
}
