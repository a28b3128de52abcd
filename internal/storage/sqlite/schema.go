package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS plans (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    country              TEXT NOT NULL,
    city                 TEXT NOT NULL DEFAULT '',
    lifestyle            TEXT NOT NULL,
    stay_length          INTEGER NOT NULL,
    housing_type         TEXT NOT NULL,
    traveler_type        TEXT NOT NULL,
    work_style           TEXT NOT NULL,
    rent                 INTEGER NOT NULL,
    food                 INTEGER NOT NULL,
    transport            INTEGER NOT NULL,
    utilities            INTEGER NOT NULL,
    internet             INTEGER NOT NULL,
    health               INTEGER NOT NULL,
    fun                  INTEGER NOT NULL,
    total_cost           INTEGER NOT NULL,
    confidence           TEXT NOT NULL,
    created_at_ns        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
    id                   TEXT PRIMARY KEY,
    email                TEXT NOT NULL,
    consent              INTEGER NOT NULL,
    country              TEXT NOT NULL,
    city                 TEXT NOT NULL DEFAULT '',
    lifestyle            TEXT NOT NULL,
    stay_length          INTEGER NOT NULL,
    housing_type         TEXT NOT NULL,
    traveler_type        TEXT NOT NULL,
    work_style           TEXT NOT NULL,
    total_cost           INTEGER NOT NULL,
    breakdown            TEXT NOT NULL,
    identifier_hash      TEXT NOT NULL,
    created_at_ns        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_user_created ON plans(user_id, created_at_ns);
CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at_ns);
`
